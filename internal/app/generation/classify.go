package generation

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/PabloGalante/interviewbuddy/internal/domain"
)

// ErrAttemptTimeout is reported when a single delivery outlives Policy.AttemptTimeout.
var ErrAttemptTimeout = errors.New("request timeout - model taking too long to respond")

// Classify maps any failure of a delivery to the generation error taxonomy.
func Classify(err error) *domain.GenerationError {
	ge, _ := classify(err)
	return ge
}

// classify also reports whether another attempt may succeed.
func classify(err error) (*domain.GenerationError, bool) {
	var ge *domain.GenerationError
	if errors.As(err, &ge) {
		return ge, retryableKind(ge.Kind)
	}

	if errors.Is(err, ErrAttemptTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return &domain.GenerationError{Kind: domain.KindTimeout, Message: err.Error(), Err: err}, true
	}

	var te *domain.TransportError
	if errors.As(err, &te) {
		out := &domain.GenerationError{Status: te.StatusCode, Message: te.Message, Err: err}
		switch {
		case te.StatusCode == http.StatusServiceUnavailable && containsFold(te.Message, "overloaded"):
			out.Kind = domain.KindOverloaded
		case te.StatusCode == http.StatusServiceUnavailable:
			out.Kind = domain.KindServiceUnavailable
		case te.StatusCode == http.StatusUnauthorized:
			out.Kind = domain.KindAuthentication
		case te.StatusCode == http.StatusTooManyRequests:
			out.Kind = domain.KindRateLimited
		case te.StatusCode == http.StatusBadRequest:
			out.Kind = domain.KindInvalidRequest
		case containsFold(te.Message, "timeout"):
			out.Kind = domain.KindTimeout
		default:
			out.Kind = domain.KindUnknown
			// network failures and 5xx are worth another try
			return out, te.StatusCode == 0 || te.StatusCode >= http.StatusInternalServerError
		}
		return out, retryableKind(out.Kind)
	}

	if containsFold(err.Error(), "timeout") {
		return &domain.GenerationError{Kind: domain.KindTimeout, Message: err.Error(), Err: err}, true
	}
	return &domain.GenerationError{Kind: domain.KindUnknown, Message: err.Error(), Err: err}, false
}

func retryableKind(k domain.ErrorKind) bool {
	switch k {
	case domain.KindOverloaded, domain.KindServiceUnavailable, domain.KindTimeout:
		return true
	default:
		return false
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}

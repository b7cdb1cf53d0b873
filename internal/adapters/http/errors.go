package httpadapter

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PabloGalante/interviewbuddy/internal/app/session"
	"github.com/PabloGalante/interviewbuddy/internal/domain"
	"github.com/PabloGalante/interviewbuddy/internal/observability"
	"github.com/PabloGalante/interviewbuddy/internal/validator"
)

type errorBody struct {
	Kind        string            `json:"kind"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Fields      map[string]string `json:"fields,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

var generationStatus = map[domain.ErrorKind]int{
	domain.KindConfiguration:      http.StatusInternalServerError,
	domain.KindOverloaded:         http.StatusServiceUnavailable,
	domain.KindServiceUnavailable: http.StatusServiceUnavailable,
	domain.KindAuthentication:     http.StatusBadGateway,
	domain.KindRateLimited:        http.StatusTooManyRequests,
	domain.KindInvalidRequest:     http.StatusBadGateway,
	domain.KindTimeout:            http.StatusGatewayTimeout,
	domain.KindParse:              http.StatusBadGateway,
	domain.KindUnknown:            http.StatusBadGateway,
}

// writeError maps service errors to a status and a readable body.
func writeError(c *gin.Context, err error) {
	status, body := describeError(err)
	if status >= http.StatusInternalServerError {
		observability.LoggerFromContext(c.Request.Context()).Error("request failed", "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: body})
}

func describeError(err error) (int, errorBody) {
	var ge *domain.GenerationError
	if errors.As(err, &ge) {
		status, ok := generationStatus[ge.Kind]
		if !ok {
			status = http.StatusBadGateway
		}
		return status, errorBody{
			Kind:        string(ge.Kind),
			Title:       ge.Kind.Title(),
			Description: ge.Kind.Description(),
		}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, validationBody(ve.Fields)
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorBody{Kind: "not_found", Title: "Not Found", Description: "The interview or session does not exist."}
	case errors.Is(err, domain.ErrAlreadyAttempted):
		return http.StatusConflict, errorBody{Kind: "already_attempted", Title: "Already Attempted", Description: "This interview already has a score."}
	case errors.Is(err, session.ErrSubmitUnavailable),
		errors.Is(err, session.ErrPlaybackUnavailable):
		return http.StatusConflict, errorBody{Kind: "not_available", Title: "Not Available", Description: err.Error()}
	case errors.Is(err, session.ErrClosed):
		return http.StatusGone, errorBody{Kind: "session_closed", Title: "Session Closed", Description: err.Error()}
	case errors.Is(err, session.ErrNoQuestions):
		return http.StatusUnprocessableEntity, errorBody{Kind: "no_questions", Title: "No Questions", Description: err.Error()}
	}

	return http.StatusInternalServerError, errorBody{
		Kind:        "internal_error",
		Title:       "Something went wrong",
		Description: "Please try again.",
	}
}

func validationBody(fields map[string]string) errorBody {
	return errorBody{
		Kind:        "validation_error",
		Title:       "Invalid Input",
		Description: "Please check your input and try again.",
		Fields:      fields,
	}
}

// badRequest reports a body that could not be bound.
func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: validationBody(validator.TranslateErrors(err))})
}

package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyAttempted = errors.New("interview already attempted")
)

// ErrorKind classifies a failed question generation.
type ErrorKind string

const (
	KindConfiguration      ErrorKind = "configuration_error"
	KindOverloaded         ErrorKind = "overloaded"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindAuthentication     ErrorKind = "authentication_error"
	KindRateLimited        ErrorKind = "rate_limited"
	KindInvalidRequest     ErrorKind = "invalid_request"
	KindTimeout            ErrorKind = "timeout"
	KindParse              ErrorKind = "parse_error"
	KindUnknown            ErrorKind = "unknown_service_error"
)

type kindText struct {
	title       string
	description string
}

var kindTexts = map[ErrorKind]kindText{
	KindConfiguration:      {"Configuration Error", "Please check your API key configuration."},
	KindOverloaded:         {"Model Overloaded", "The AI model is currently busy. Please try again in a moment."},
	KindServiceUnavailable: {"Service Unavailable", "The AI service is temporarily down. Please try again in a few minutes."},
	KindAuthentication:     {"Authentication Error", "Please check your API key and try again."},
	KindRateLimited:        {"Rate Limit Exceeded", "Too many requests. Please wait a moment before trying again."},
	KindInvalidRequest:     {"Invalid Request", "Please check your input and try again."},
	KindTimeout:            {"Request Timeout", "The AI model is taking longer than expected. Please try again."},
	KindParse:              {"Unreadable Response", "The AI returned questions in an unexpected format. Please try again."},
	KindUnknown:            {"Generation Failed", "Something went wrong while generating questions. Please try again."},
}

// Title is the short, user facing name of the failure.
func (k ErrorKind) Title() string {
	if t, ok := kindTexts[k]; ok {
		return t.title
	}
	return kindTexts[KindUnknown].title
}

// Description is the user facing explanation of the failure.
func (k ErrorKind) Description() string {
	if t, ok := kindTexts[k]; ok {
		return t.description
	}
	return kindTexts[KindUnknown].description
}

// TransportError is what an AI transport reports when a call fails.
// StatusCode is 0 when the request never got an HTTP answer.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("ai transport: %s", e.Message)
	}
	return fmt.Sprintf("ai transport: status %d: %s", e.StatusCode, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// GenerationError is the single classified error surfaced by the question generator.
type GenerationError struct {
	Kind     ErrorKind
	Status   int
	Message  string
	Model    string
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Attempts > 0 {
		fmt.Fprintf(&b, " (after %d attempt(s)", e.Attempts)
		if e.Model != "" {
			fmt.Fprintf(&b, ", last model %s", e.Model)
		}
		b.WriteString(")")
	}
	return b.String()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationKind reports whether err is a GenerationError of the given kind.
func IsGenerationKind(err error, kind ErrorKind) bool {
	var ge *GenerationError
	return errors.As(err, &ge) && ge.Kind == kind
}

// ValidationError lists invalid InterviewSpec fields with readable messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid interview spec: " + strings.Join(parts, "; ")
}

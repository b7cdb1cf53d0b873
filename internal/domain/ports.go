package domain

import "context"

// TextGenerator defines how the core talks to a generative AI backend.
// Failures should be reported as *TransportError so they can be classified.
type TextGenerator interface {
	GenerateText(ctx context.Context, model string, prompt string) (string, error)
}

// InterviewStore defines persistence of the "interviews" collection.
type InterviewStore interface {
	CreateInterview(ctx context.Context, rec *InterviewRecord) error
	// UpdateInterview rewrites spec fields and questions; status and score are untouched.
	UpdateInterview(ctx context.Context, rec *InterviewRecord) error
	GetInterview(ctx context.Context, id InterviewID) (*InterviewRecord, error)
	DeleteInterview(ctx context.Context, id InterviewID) error
	ListInterviewsByUser(ctx context.Context, userID UserID) ([]*InterviewRecord, error)
	// MarkAttempted moves a pending interview to attempted with its score.
	// It fails with ErrAlreadyAttempted when the interview was already scored.
	MarkAttempted(ctx context.Context, id InterviewID, score float64) error
	// WatchInterviewsByUser streams the full list on every change until ctx is done.
	WatchInterviewsByUser(ctx context.Context, userID UserID) (<-chan []*InterviewRecord, error)
}

// AnswerStore defines persistence of the "userAnswers" collection.
type AnswerStore interface {
	AppendAnswer(ctx context.Context, ans *AnswerRating) error
	ListAnswersByInterview(ctx context.Context, interviewID InterviewID) ([]*AnswerRating, error)
	DeleteAnswersByInterview(ctx context.Context, interviewID InterviewID) error
}

// Voice is one synthesis voice offered by the platform.
type Voice struct {
	Name string
	Lang string
}

// Utterance is a single request to read text aloud.
type Utterance struct {
	Text   string
	Voice  *Voice // nil means platform default
	Rate   float64
	Pitch  float64
	Volume float64
}

// Speaker is the speech synthesis capability.
// Speak blocks until playback ends or ctx is cancelled.
type Speaker interface {
	Voices() []Voice
	Speak(ctx context.Context, u Utterance) error
}

// Screen is the best-effort full-screen capability of the presentation layer.
type Screen interface {
	RequestFullScreen() error
	ExitFullScreen() error
}

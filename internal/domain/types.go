package domain

import "time"

type InterviewID string
type UserID string
type AnswerID string
type SessionID string

// InterviewType selects the emphasis of the generated questions.
type InterviewType string

const (
	InterviewTechnical   InterviewType = "technical"
	InterviewBehavioural InterviewType = "behavioural"
	InterviewMixed       InterviewType = "mixed"
)

// InterviewStatus tracks whether an interview was already taken.
type InterviewStatus string

const (
	StatusPending   InterviewStatus = "pending"   // yet to be given
	StatusAttempted InterviewStatus = "attempted" // already given, has a score
)

const (
	MinQuestions = 1
	MaxQuestions = 20
	MaxScore     = 10.0
)

type Timestamp = time.Time

package domain

import "strings"

// InterviewSpec holds the user supplied parameters of a mock interview.
// It is the immutable input to question generation.
type InterviewSpec struct {
	Position          string        `json:"position" validate:"required,max=100"`
	Description       string        `json:"description" validate:"required,min=10"`
	YearsExperience   int           `json:"experience" validate:"gte=0"`
	TechStack         []string      `json:"techStack" validate:"required,min=1,dive,required"`
	InterviewType     InterviewType `json:"interviewType" validate:"required,oneof=technical behavioural mixed"`
	NumberOfQuestions int           `json:"numberOfQuestions" validate:"min=1,max=20"`
}

// TechStackText renders the tag list the way users typed it in the form.
func (s InterviewSpec) TechStackText() string {
	return strings.Join(s.TechStack, ", ")
}

// ParseTechStack splits a comma separated tech stack into trimmed tags.
func ParseTechStack(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// QAPair is one generated question with its model answer.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// InterviewRecord is the persisted lifecycle of one interview.
type InterviewRecord struct {
	ID     InterviewID
	UserID UserID

	Spec      InterviewSpec
	Questions []QAPair

	Status InterviewStatus
	// Score is set exactly once, when a session completes.
	Score *float64

	CreatedAt Timestamp
	UpdatedAt Timestamp
}

// Attempted reports whether the interview already has a final score.
func (r *InterviewRecord) Attempted() bool {
	return r.Status == StatusAttempted
}

// AnswerRating is one recorded answer graded by the grading collaborator.
type AnswerRating struct {
	ID            AnswerID
	InterviewID   InterviewID
	UserID        UserID
	QuestionIndex int

	Question      string
	CorrectAnswer string
	UserAnswer    string
	Feedback      string
	Rating        float64

	CreatedAt Timestamp
	UpdatedAt Timestamp
}

// PartitionByStatus splits a dashboard list into pending and attempted interviews,
// keeping the input order.
func PartitionByStatus(records []*InterviewRecord) (pending, attempted []*InterviewRecord) {
	pending = []*InterviewRecord{}
	attempted = []*InterviewRecord{}
	for _, r := range records {
		if r.Attempted() {
			attempted = append(attempted, r)
			continue
		}
		pending = append(pending, r)
	}
	return pending, attempted
}

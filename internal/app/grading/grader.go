package grading

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/interviewbuddy/internal/app/generation"
	"github.com/PabloGalante/interviewbuddy/internal/domain"
	"github.com/PabloGalante/interviewbuddy/internal/observability"
)

const gradingPrompt = `
Question: %q
User Answer: %q
Correct Answer: %q

Please compare the user's answer to the correct answer, and provide a rating (from 1 to 10) based on answer quality, and offer feedback for improvement.
Return the result in JSON format with the fields "ratings" (number) and "feedback" (string).
`

// Input is one answer to grade.
type Input struct {
	Question      string
	CorrectAnswer string
	UserAnswer    string
}

// Grade is the AI's verdict on one answer.
type Grade struct {
	Rating   float64 `json:"ratings"`
	Feedback string  `json:"feedback"`
}

// Grader rates recorded answers with the same delivery policy used for
// question generation.
type Grader struct {
	runner *generation.Runner
}

func NewGrader(runner *generation.Runner) *Grader {
	return &Grader{runner: runner}
}

func BuildPrompt(in Input) string {
	return fmt.Sprintf(gradingPrompt, in.Question, in.UserAnswer, in.CorrectAnswer)
}

// Grade sends the answer to the model and decodes its {ratings, feedback}
// object. Ratings are clamped to [0, 10].
func (g *Grader) Grade(ctx context.Context, in Input) (Grade, error) {
	if strings.TrimSpace(in.UserAnswer) == "" {
		return Grade{}, &domain.ValidationError{Fields: map[string]string{"userAnswer": "userAnswer is a required field"}}
	}
	if g.runner == nil {
		return Grade{}, &domain.GenerationError{Kind: domain.KindConfiguration, Message: "AI client not configured"}
	}

	log := observability.LoggerFromContext(ctx)

	raw, err := g.runner.Run(ctx, BuildPrompt(in))
	if err != nil {
		log.Error("grading request failed", "error", err)
		return Grade{}, err
	}

	var out Grade
	if err := generation.DecodeObject(raw, &out); err != nil {
		log.Error("could not parse grading response", "error", err)
		return Grade{}, err
	}

	switch {
	case out.Rating < 0:
		out.Rating = 0
	case out.Rating > domain.MaxScore:
		out.Rating = domain.MaxScore
	}
	out.Feedback = strings.TrimSpace(out.Feedback)
	return out, nil
}

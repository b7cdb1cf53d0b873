package grading

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/interviewbuddy/internal/app/generation"
	"github.com/PabloGalante/interviewbuddy/internal/domain"
)

type cannedGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (g *cannedGenerator) GenerateText(_ context.Context, _, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func newGrader(gen *cannedGenerator) *Grader {
	runner := generation.NewRunner(gen, generation.Models{Primary: "p", Fallback: "f"}, generation.DefaultPolicy()).
		WithSleep(func(context.Context, time.Duration) error { return nil })
	return NewGrader(runner)
}

var sample = Input{
	Question:      "What is a race condition?",
	CorrectAnswer: "Two goroutines touching shared state without synchronization.",
	UserAnswer:    "When threads step on each other.",
}

func TestGrade(t *testing.T) {
	gen := &cannedGenerator{reply: "```json\n{\"ratings\": 6, \"feedback\": \" Mention synchronization. \"}\n```"}

	got, err := newGrader(gen).Grade(context.Background(), sample)
	require.NoError(t, err)
	assert.Equal(t, Grade{Rating: 6, Feedback: "Mention synchronization."}, got)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], `User Answer: "When threads step on each other."`)
	assert.Contains(t, gen.prompts[0], `"ratings"`)
}

func TestGradeClampsRating(t *testing.T) {
	gen := &cannedGenerator{reply: `{"ratings": 14, "feedback": "Great"}`}

	got, err := newGrader(gen).Grade(context.Background(), sample)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Rating)
}

func TestGradeErrors(t *testing.T) {
	t.Run("empty answer", func(t *testing.T) {
		in := sample
		in.UserAnswer = "  "
		_, err := newGrader(&cannedGenerator{}).Grade(context.Background(), in)

		var ve *domain.ValidationError
		assert.True(t, errors.As(err, &ve))
	})

	t.Run("unreadable reply", func(t *testing.T) {
		_, err := newGrader(&cannedGenerator{reply: "I think it was fine."}).Grade(context.Background(), sample)
		assert.True(t, domain.IsGenerationKind(err, domain.KindParse))
	})

	t.Run("transport failure", func(t *testing.T) {
		gen := &cannedGenerator{err: &domain.TransportError{StatusCode: 401, Message: "bad key"}}
		_, err := newGrader(gen).Grade(context.Background(), sample)
		assert.True(t, domain.IsGenerationKind(err, domain.KindAuthentication))
	})

	t.Run("no runner", func(t *testing.T) {
		_, err := NewGrader(nil).Grade(context.Background(), sample)
		assert.True(t, domain.IsGenerationKind(err, domain.KindConfiguration))
	})
}

package generation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/PabloGalante/interviewbuddy/internal/domain"
)

type step struct {
	text string
	err  error
}

// scriptedGenerator answers each call with the next scripted step.
type scriptedGenerator struct {
	mu      sync.Mutex
	steps   []step
	models  []string
	prompts []string
}

func newScripted(steps ...step) *scriptedGenerator {
	return &scriptedGenerator{steps: steps}
}

func (g *scriptedGenerator) GenerateText(_ context.Context, model, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.models = append(g.models, model)
	g.prompts = append(g.prompts, prompt)
	if len(g.steps) == 0 {
		return "", errors.New("no more scripted responses")
	}
	s := g.steps[0]
	g.steps = g.steps[1:]
	return s.text, s.err
}

func (g *scriptedGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.models)
}

// waitRecorder replaces the backoff sleep.
type waitRecorder struct {
	waits []time.Duration
}

func (w *waitRecorder) sleep(ctx context.Context, d time.Duration) error {
	w.waits = append(w.waits, d)
	return ctx.Err()
}

func overloaded() error {
	return &domain.TransportError{StatusCode: 503, Message: "The model is overloaded. Please try again later."}
}

func statusErr(code int, msg string) error {
	return &domain.TransportError{StatusCode: code, Message: msg}
}

var testModels = Models{Primary: "primary-model", Fallback: "fallback-model"}

func newTestRunner(client domain.TextGenerator, rec *waitRecorder) *Runner {
	return NewRunner(client, testModels, DefaultPolicy()).WithSleep(rec.sleep)
}

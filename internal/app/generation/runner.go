package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/PabloGalante/interviewbuddy/internal/domain"
	"github.com/PabloGalante/interviewbuddy/internal/observability"
)

// Runner delivers one prompt to the AI backend, retrying and falling
// back to the secondary model according to its Policy. Attempts are
// strictly sequential.
type Runner struct {
	client domain.TextGenerator
	models Models
	policy Policy
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewRunner(client domain.TextGenerator, models Models, policy Policy) *Runner {
	return &Runner{
		client: client,
		models: models,
		policy: policy,
		sleep:  sleepContext,
	}
}

// WithSleep replaces the backoff wait, mostly so tests can record waits
// instead of sleeping.
func (r *Runner) WithSleep(fn func(ctx context.Context, d time.Duration) error) *Runner {
	r.sleep = fn
	return r
}

// Run returns the raw text of the first successful attempt, or a
// *domain.GenerationError describing the last failure.
func (r *Runner) Run(ctx context.Context, prompt string) (string, error) {
	if r.client == nil {
		return "", &domain.GenerationError{
			Kind:    domain.KindConfiguration,
			Message: "AI client not configured",
		}
	}

	log := observability.LoggerFromContext(ctx)
	maxAttempts := r.policy.MaxAttempts()

	var last *domain.GenerationError
	for attempt := 0; attempt < maxAttempts; attempt++ {
		model := r.policy.ModelFor(attempt, r.models)
		start := time.Now()
		log.Info("sending generation request",
			"attempt", attempt+1,
			"max_attempts", maxAttempts,
			"model", model)

		text, err := r.deliver(ctx, model, prompt)
		if err == nil {
			log.Info("generation response received",
				"attempt", attempt+1,
				"model", model,
				"elapsed_ms", time.Since(start).Milliseconds())
			return text, nil
		}

		if ctx.Err() != nil {
			return "", fmt.Errorf("generation cancelled: %w", ctx.Err())
		}

		ge, retryable := classify(err)
		ge.Model = model
		ge.Attempts = attempt + 1
		last = ge

		log.Warn("generation attempt failed",
			"attempt", attempt+1,
			"model", model,
			"kind", ge.Kind,
			"status", ge.Status,
			"error", err)

		if !retryable || attempt == maxAttempts-1 {
			return "", ge
		}

		wait := r.policy.backoff(attempt)
		log.Info("backing off before retry", "wait_ms", wait.Milliseconds())
		if err := r.sleep(ctx, wait); err != nil {
			return "", fmt.Errorf("generation cancelled: %w", err)
		}
	}

	return "", last
}

type deliveryResult struct {
	text string
	err  error
}

// deliver runs a single attempt under its own deadline. The transport
// sees the cancellation, and a result arriving after the deadline is dropped.
func (r *Runner) deliver(ctx context.Context, model, prompt string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.policy.AttemptTimeout)
	defer cancel()

	done := make(chan deliveryResult, 1)
	go func() {
		text, err := r.client.GenerateText(attemptCtx, model, prompt)
		done <- deliveryResult{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && ctx.Err() == nil && attemptCtx.Err() == context.DeadlineExceeded {
			return "", ErrAttemptTimeout
		}
		return res.text, res.err
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", ErrAttemptTimeout
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

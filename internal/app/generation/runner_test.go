package generation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/interviewbuddy/internal/domain"
)

func TestRunnerRetriesOverloadThenSucceeds(t *testing.T) {
	gen := newScripted(
		step{err: overloaded()},
		step{err: overloaded()},
		step{text: `[{"question":"q","answer":"a"}]`},
	)
	rec := &waitRecorder{}

	text, err := newTestRunner(gen, rec).Run(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, `[{"question":"q","answer":"a"}]`, text)
	assert.Equal(t, []time.Duration{4000 * time.Millisecond, 8000 * time.Millisecond}, rec.waits)
	assert.Equal(t, []string{"primary-model", "primary-model", "fallback-model"}, gen.models)
}

func TestRunnerAuthenticationFailsWithoutRetry(t *testing.T) {
	gen := newScripted(step{err: statusErr(401, "API key not valid")})
	rec := &waitRecorder{}

	_, err := newTestRunner(gen, rec).Run(context.Background(), "prompt")
	require.Error(t, err)

	var ge *domain.GenerationError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, domain.KindAuthentication, ge.Kind)
	assert.Equal(t, 1, ge.Attempts)
	assert.Equal(t, 1, gen.calls())
	assert.Empty(t, rec.waits)
}

func TestRunnerNonRetryableKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.ErrorKind
	}{
		{"rate limited", statusErr(429, "quota exceeded"), domain.KindRateLimited},
		{"invalid request", statusErr(400, "bad payload"), domain.KindInvalidRequest},
		{"plain error", errors.New("boom"), domain.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newScripted(step{err: tt.err}, step{text: "[]"})
			rec := &waitRecorder{}

			_, err := newTestRunner(gen, rec).Run(context.Background(), "prompt")
			assert.True(t, domain.IsGenerationKind(err, tt.want))
			assert.Equal(t, 1, gen.calls())
			assert.Empty(t, rec.waits)
		})
	}
}

func TestRunnerExhaustsAttempts(t *testing.T) {
	gen := newScripted(
		step{err: statusErr(500, "internal")},
		step{err: statusErr(500, "internal")},
		step{err: statusErr(503, "unavailable")},
		step{err: statusErr(503, "unavailable")},
		step{text: "never reached"},
	)
	rec := &waitRecorder{}

	_, err := newTestRunner(gen, rec).Run(context.Background(), "prompt")

	var ge *domain.GenerationError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, domain.KindServiceUnavailable, ge.Kind)
	assert.Equal(t, 4, ge.Attempts)
	assert.Equal(t, "fallback-model", ge.Model)
	assert.Equal(t, []string{"primary-model", "primary-model", "fallback-model", "fallback-model"}, gen.models)
	assert.Equal(t, []time.Duration{4 * time.Second, 8 * time.Second, 16 * time.Second}, rec.waits)
}

func TestRunnerTransportFailureIsRetried(t *testing.T) {
	gen := newScripted(
		step{err: &domain.TransportError{Message: "connection reset by peer"}},
		step{text: "ok"},
	)
	rec := &waitRecorder{}

	text, err := newTestRunner(gen, rec).Run(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Len(t, rec.waits, 1)
}

// blockingGenerator never answers; it records whether it saw cancellation.
type blockingGenerator struct {
	mu        sync.Mutex
	cancelled int
}

func (g *blockingGenerator) GenerateText(ctx context.Context, _, _ string) (string, error) {
	<-ctx.Done()
	g.mu.Lock()
	g.cancelled++
	g.mu.Unlock()
	return "", ctx.Err()
}

func TestRunnerAttemptTimeoutCancelsTransport(t *testing.T) {
	gen := &blockingGenerator{}
	rec := &waitRecorder{}

	policy := DefaultPolicy()
	policy.MaxRetries = 1
	policy.AttemptTimeout = 20 * time.Millisecond

	r := NewRunner(gen, testModels, policy).WithSleep(rec.sleep)
	_, err := r.Run(context.Background(), "prompt")

	var ge *domain.GenerationError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, domain.KindTimeout, ge.Kind)
	assert.Equal(t, 2, ge.Attempts)
	assert.Equal(t, []time.Duration{4 * time.Second}, rec.waits)

	assert.Eventually(t, func() bool {
		gen.mu.Lock()
		defer gen.mu.Unlock()
		return gen.cancelled == 2
	}, time.Second, 5*time.Millisecond)
}

func TestRunnerStopsWhenCallerCancels(t *testing.T) {
	gen := newScripted(step{err: overloaded()}, step{text: "late"})
	ctx, cancel := context.WithCancel(context.Background())

	r := newTestRunner(gen, &waitRecorder{}).WithSleep(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	})

	_, err := r.Run(ctx, "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, gen.calls())
}

func TestRunnerWithoutClient(t *testing.T) {
	_, err := NewRunner(nil, testModels, DefaultPolicy()).Run(context.Background(), "prompt")
	assert.True(t, domain.IsGenerationKind(err, domain.KindConfiguration))
}

func TestPolicy(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, 4, p.MaxAttempts())
	assert.Equal(t, 4*time.Second, p.Backoff(0))
	assert.Equal(t, 8*time.Second, p.Backoff(1))
	assert.Equal(t, 16*time.Second, p.Backoff(2))

	assert.Equal(t, "primary-model", p.ModelFor(0, testModels))
	assert.Equal(t, "primary-model", p.ModelFor(1, testModels))
	assert.Equal(t, "fallback-model", p.ModelFor(2, testModels))
	assert.Equal(t, "primary-model", p.ModelFor(3, Models{Primary: "primary-model"}))
}

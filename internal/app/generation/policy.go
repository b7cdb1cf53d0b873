package generation

import "time"

// Models names the primary and fallback model endpoints.
type Models struct {
	Primary  string
	Fallback string
}

// Policy decides how many times a prompt is delivered, to which model,
// how long each attempt may take and how long to wait in between.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// PrimaryAttempts is how many attempts go to the primary model
	// before switching to the fallback.
	PrimaryAttempts int
	AttemptTimeout  time.Duration
	// Backoff returns the wait after the failed, zero based, attempt.
	Backoff func(attempt int) time.Duration
}

// DefaultPolicy is 4 attempts (2 primary, 2 fallback), 60s each,
// backing off 4s, 8s, 16s.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:      3,
		PrimaryAttempts: 2,
		AttemptTimeout:  60 * time.Second,
		Backoff:         ExponentialBackoff(2 * time.Second),
	}
}

// ExponentialBackoff waits 2^(attempt+1) * base.
func ExponentialBackoff(base time.Duration) func(attempt int) time.Duration {
	return func(attempt int) time.Duration {
		if attempt < 0 {
			attempt = 0
		}
		return time.Duration(int64(1)<<uint(attempt+1)) * base
	}
}

// MaxAttempts is the total number of deliveries the policy allows.
func (p Policy) MaxAttempts() int {
	if p.MaxRetries < 0 {
		return 1
	}
	return p.MaxRetries + 1
}

// ModelFor picks the model for the zero based attempt.
func (p Policy) ModelFor(attempt int, m Models) string {
	if attempt < p.PrimaryAttempts || m.Fallback == "" {
		return m.Primary
	}
	return m.Fallback
}

func (p Policy) backoff(attempt int) time.Duration {
	if p.Backoff == nil {
		return 0
	}
	return p.Backoff(attempt)
}

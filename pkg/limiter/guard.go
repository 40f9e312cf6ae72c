// Package limiter protects an external oracle process from overload and
// retries transient failures before they surface to a driver.
package limiter

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/repairlab/testgen/core"
)

// Config holds the guard settings.
type Config struct {
	// RPS caps oracle invocations per second; 0 disables rate limiting.
	RPS   float64
	Burst int

	// MaxRetries bounds re-attempts for a failed classification. The final
	// error still propagates unmodified semantics-wise: a candidate is never
	// silently reclassified.
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64

	// Breaker settings for the circuit around the oracle.
	BreakerMaxRequests uint32
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration
}

// DefaultConfig returns conservative guard settings.
func DefaultConfig() Config {
	return Config{
		RPS:                0,
		Burst:              1,
		MaxRetries:         3,
		BaseDelay:          100 * time.Millisecond,
		MaxDelay:           5 * time.Second,
		BackoffFactor:      2.0,
		BreakerMaxRequests: 3,
		BreakerInterval:    10 * time.Second,
		BreakerTimeout:     30 * time.Second,
	}
}

// GuardedOracle wraps an oracle with a rate limiter, a circuit breaker, and
// bounded retries with exponential backoff.
type GuardedOracle struct {
	inner   core.Oracle
	cfg     Config
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	rng     *rand.Rand
}

// NewGuardedOracle builds a guard around the oracle. The rng is used for
// retry jitter and is owned by this guard.
func NewGuardedOracle(inner core.Oracle, cfg Config, rng *rand.Rand) *GuardedOracle {
	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "oracle",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
	})

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &GuardedOracle{inner: inner, cfg: cfg, limiter: limiter, breaker: breaker, rng: rng}
}

type classification struct {
	verdict core.Verdict
	meta    core.Metadata
}

func (g *GuardedOracle) Classify(ctx context.Context, c core.Candidate) (core.Verdict, core.Metadata, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return core.VerdictUndefined, nil, err
		}
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		return g.classifyWithRetry(ctx, c)
	})
	if err != nil {
		return core.VerdictUndefined, nil, err
	}

	cl := result.(classification)
	return cl.verdict, cl.meta, nil
}

func (g *GuardedOracle) classifyWithRetry(ctx context.Context, c core.Candidate) (classification, error) {
	var lastErr error

	for attempt := 0; attempt <= g.cfg.MaxRetries; attempt++ {
		verdict, meta, err := g.inner.Classify(ctx, c)
		if err == nil {
			return classification{verdict: verdict, meta: meta}, nil
		}
		lastErr = err

		if attempt == g.cfg.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return classification{}, ctx.Err()
		case <-time.After(g.delay(attempt)):
		}
	}

	return classification{}, lastErr
}

// delay computes exponential backoff with jitter, capped at MaxDelay.
func (g *GuardedOracle) delay(attempt int) time.Duration {
	d := float64(g.cfg.BaseDelay) * math.Pow(g.cfg.BackoffFactor, float64(attempt))
	if max := float64(g.cfg.MaxDelay); d > max {
		d = max
	}
	d *= 0.5 + g.rng.Float64()*0.5
	return time.Duration(d)
}

package limiter

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repairlab/testgen/core"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	return cfg
}

func TestGuardedOraclePassesThrough(t *testing.T) {
	inner := core.OracleFunc(func(ctx context.Context, c core.Candidate) (core.Verdict, core.Metadata, error) {
		return core.VerdictPassing, core.Metadata{"k": "v"}, nil
	})

	g := NewGuardedOracle(inner, fastConfig(), rand.New(rand.NewSource(1)))
	verdict, meta, err := g.Classify(context.Background(), core.Input("x"))
	require.NoError(t, err)
	assert.Equal(t, core.VerdictPassing, verdict)
	assert.Equal(t, "v", meta["k"])
}

func TestGuardedOracleRetriesTransientFailures(t *testing.T) {
	calls := 0
	inner := core.OracleFunc(func(ctx context.Context, c core.Candidate) (core.Verdict, core.Metadata, error) {
		calls++
		if calls < 3 {
			return core.VerdictUndefined, nil, errors.New("flaky")
		}
		return core.VerdictFailing, nil, nil
	})

	g := NewGuardedOracle(inner, fastConfig(), rand.New(rand.NewSource(1)))
	verdict, _, err := g.Classify(context.Background(), core.Input("x"))
	require.NoError(t, err)
	assert.Equal(t, core.VerdictFailing, verdict)
	assert.Equal(t, 3, calls)
}

func TestGuardedOracleGivesUpAfterMaxRetries(t *testing.T) {
	oracleErr := errors.New("down")
	calls := 0
	inner := core.OracleFunc(func(ctx context.Context, c core.Candidate) (core.Verdict, core.Metadata, error) {
		calls++
		return core.VerdictUndefined, nil, oracleErr
	})

	cfg := fastConfig()
	cfg.MaxRetries = 2
	g := NewGuardedOracle(inner, cfg, rand.New(rand.NewSource(1)))

	_, _, err := g.Classify(context.Background(), core.Input("x"))
	require.ErrorIs(t, err, oracleErr)
	assert.Equal(t, 3, calls) // initial attempt plus two retries
}

func TestGuardedOracleRateLimitRespectsContext(t *testing.T) {
	inner := core.OracleFunc(func(ctx context.Context, c core.Candidate) (core.Verdict, core.Metadata, error) {
		return core.VerdictPassing, nil, nil
	})

	cfg := fastConfig()
	cfg.RPS = 0.001 // one call per ~17 minutes
	cfg.Burst = 1
	g := NewGuardedOracle(inner, cfg, rand.New(rand.NewSource(1)))

	// First call consumes the burst token.
	_, _, err := g.Classify(context.Background(), core.Input("a"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err = g.Classify(ctx, core.Input("b"))
	require.Error(t, err)
}

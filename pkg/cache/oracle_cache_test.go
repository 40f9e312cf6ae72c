package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repairlab/testgen/core"
)

func TestMemoizingOracleCachesVerdicts(t *testing.T) {
	calls := 0
	inner := core.OracleFunc(func(ctx context.Context, c core.Candidate) (core.Verdict, core.Metadata, error) {
		calls++
		return core.VerdictFailing, core.Metadata{"call": "1"}, nil
	})

	m, err := NewMemoizingOracle(inner, 16)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		verdict, meta, err := m.Classify(context.Background(), core.Input("same"))
		require.NoError(t, err)
		assert.Equal(t, core.VerdictFailing, verdict)
		assert.Equal(t, "1", meta["call"])
	}

	assert.Equal(t, 1, calls)
	stats := m.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestMemoizingOracleDoesNotCacheErrors(t *testing.T) {
	oracleErr := errors.New("transient")
	calls := 0
	inner := core.OracleFunc(func(ctx context.Context, c core.Candidate) (core.Verdict, core.Metadata, error) {
		calls++
		if calls == 1 {
			return core.VerdictUndefined, nil, oracleErr
		}
		return core.VerdictPassing, nil, nil
	})

	m, err := NewMemoizingOracle(inner, 16)
	require.NoError(t, err)

	_, _, err = m.Classify(context.Background(), core.Input("x"))
	require.ErrorIs(t, err, oracleErr)

	verdict, _, err := m.Classify(context.Background(), core.Input("x"))
	require.NoError(t, err)
	assert.Equal(t, core.VerdictPassing, verdict)
	assert.Equal(t, 2, calls)
}

func TestMemoizingOracleDistinguishesCandidates(t *testing.T) {
	inner := core.OracleFunc(func(ctx context.Context, c core.Candidate) (core.Verdict, core.Metadata, error) {
		if c.String() == "bad" {
			return core.VerdictFailing, nil, nil
		}
		return core.VerdictPassing, nil, nil
	})

	m, err := NewMemoizingOracle(inner, 16)
	require.NoError(t, err)

	verdict, _, err := m.Classify(context.Background(), core.Input("bad"))
	require.NoError(t, err)
	assert.Equal(t, core.VerdictFailing, verdict)

	verdict, _, err = m.Classify(context.Background(), core.Input("good"))
	require.NoError(t, err)
	assert.Equal(t, core.VerdictPassing, verdict)
}

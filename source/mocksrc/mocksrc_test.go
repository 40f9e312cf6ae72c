package mocksrc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repairlab/testgen/core"
)

func TestSourceExhaustsAfterSequence(t *testing.T) {
	s := New("a", "b")

	c, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", c.String())

	c, err = s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", c.String())

	_, err = s.Next(context.Background())
	require.ErrorIs(t, err, core.ErrExhausted)

	// Exhaustion is sticky.
	_, err = s.Next(context.Background())
	require.ErrorIs(t, err, core.ErrExhausted)
}

func TestLoopingSourceCycles(t *testing.T) {
	s := NewLooping("x", "y")

	got := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		c, err := s.Next(context.Background())
		require.NoError(t, err)
		got = append(got, c.String())
	}
	assert.Equal(t, []string{"x", "y", "x", "y", "x"}, got)
}

func TestSourceHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New("a").Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

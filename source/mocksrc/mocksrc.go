// Package mocksrc provides a scripted candidate source for tests.
package mocksrc

import (
	"context"

	"github.com/repairlab/testgen/core"
)

// Source replays a fixed sequence of inputs. Once the sequence is spent it
// signals exhaustion on every Next call, unless Loop is set.
type Source struct {
	inputs []string
	pos    int
	loop   bool
}

// New creates a source that yields the given inputs once, then exhausts.
func New(inputs ...string) *Source {
	return &Source{inputs: inputs}
}

// NewLooping creates a source that cycles through the inputs forever.
func NewLooping(inputs ...string) *Source {
	return &Source{inputs: inputs, loop: true}
}

func (s *Source) Next(ctx context.Context) (core.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.inputs) {
		if !s.loop || len(s.inputs) == 0 {
			return nil, core.ErrExhausted
		}
		s.pos = 0
	}
	input := s.inputs[s.pos]
	s.pos++
	return core.Input(input), nil
}

// Exhausted is a source that signals exhaustion on every call.
type Exhausted struct{}

func (Exhausted) Next(ctx context.Context) (core.Candidate, error) {
	return nil, core.ErrExhausted
}

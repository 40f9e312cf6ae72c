package core

import (
	"context"
	"errors"
)

// ErrExhausted signals that a candidate source cannot produce further
// results without being replaced. It is a recoverable condition.
var ErrExhausted = errors.New("candidate source exhausted")

// Candidate is one generated input awaiting classification. The String
// form is the canonical representation used for storage and deduplication.
type Candidate interface {
	String() string
}

// Input is a plain-text candidate.
type Input string

func (i Input) String() string { return string(i) }

// Oracle classifies a candidate. The metadata is auxiliary diagnostic data.
// Any error is fatal for the current run and propagates to the caller.
type Oracle interface {
	Classify(ctx context.Context, c Candidate) (Verdict, Metadata, error)
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(ctx context.Context, c Candidate) (Verdict, Metadata, error)

func (f OracleFunc) Classify(ctx context.Context, c Candidate) (Verdict, Metadata, error) {
	return f(ctx, c)
}

// CandidateSource produces candidates one at a time. Next returns
// ErrExhausted when the source has run dry; any other error is fatal.
type CandidateSource interface {
	Next(ctx context.Context) (Candidate, error)
}

// SourceFactory builds a fresh source with the same settings (formula,
// negation, query optimization) as the one it replaces. A source instance
// is owned by one driver invocation and discarded on exhaustion.
type SourceFactory func() (CandidateSource, error)

// Formula is an opaque logical constraint over a grammar. Negate flips the
// satisfied set; Unparse renders the human-readable constraint text that is
// persisted as the formula artifact.
type Formula interface {
	Negate() Formula
	Unparse() string
}

// Grammar describes the input language. It is opaque to the drivers;
// concrete grammars live with the sources that consume them.
type Grammar interface {
	Start() string
}

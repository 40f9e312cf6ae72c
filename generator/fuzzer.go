package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/repairlab/testgen/core"
	"github.com/repairlab/testgen/corpus"
	"github.com/repairlab/testgen/pkg/metrics"
)

const fuzzDriverName = "fuzzer"

// DefaultFuzzIterations is the hard cap on random draws when none is given.
const DefaultFuzzIterations = 20000

// Fuzzer draws random candidates from a grammar-based source until the
// failing and passing targets are met or the iteration cap is reached. A
// random source has no notion of exhaustion, so there is no restart path.
type Fuzzer struct {
	Source        core.CandidateSource
	Oracle        core.Oracle
	NumFailing    int
	NumPassing    int
	MaxIterations int
	Logger        *slog.Logger
	Metrics       *metrics.GenerationMetrics
}

// Run executes the fuzzing loop. The returned buckets are always
// set-deduplicated; order is not preserved.
func (f *Fuzzer) Run(ctx context.Context) (corpus.Buckets, error) {
	start := time.Now()
	defer f.Metrics.ObserveRun(fuzzDriverName, start)

	maxIterations := f.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultFuzzIterations
	}

	var buckets corpus.Buckets
	var failingCount, passingCount, iteration int

	for iteration < maxIterations {
		candidate, err := f.Source.Next(ctx)
		if err != nil {
			return buckets, fmt.Errorf("next candidate: %w", err)
		}
		verdict, _, err := f.Oracle.Classify(ctx, candidate)
		if err != nil {
			return buckets, fmt.Errorf("classify candidate: %w", err)
		}
		iteration++
		f.Metrics.CandidatesTotal.WithLabelValues(fuzzDriverName, string(verdict)).Inc()

		if iteration%10 == 0 {
			f.Logger.Info("fuzzer progress",
				"failing", len(buckets.Failing),
				"passing", len(buckets.Passing),
				"iterations", iteration)
		}

		input := candidate.String()
		switch {
		case verdict == core.VerdictFailing && !contains(buckets.Failing, input):
			if failingCount >= f.NumFailing {
				continue
			}
			buckets.Failing = append(buckets.Failing, input)
			failingCount++
			f.Metrics.AcceptedTotal.WithLabelValues(fuzzDriverName).Inc()

		case verdict == core.VerdictPassing && !contains(buckets.Passing, input):
			if passingCount >= f.NumPassing {
				continue
			}
			buckets.Passing = append(buckets.Passing, input)
			passingCount++
			f.Metrics.AcceptedTotal.WithLabelValues(fuzzDriverName).Inc()
		}

		if failingCount >= f.NumFailing && passingCount >= f.NumPassing {
			break
		}
	}

	// Unconditional final dedup, unlike the solver driver's policy-gated one.
	buckets.Dedup()

	f.Logger.Info("fuzzer run finished",
		"failing", len(buckets.Failing),
		"passing", len(buckets.Passing),
		"iterations", iteration)
	return buckets, nil
}

func contains(inputs []string, s string) bool {
	for _, have := range inputs {
		if have == s {
			return true
		}
	}
	return false
}

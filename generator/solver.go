package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/repairlab/testgen/core"
	"github.com/repairlab/testgen/corpus"
	"github.com/repairlab/testgen/pkg/metrics"
)

const solverDriverName = "solver"

// SolverDriver pulls candidates from a solver-guided source and buckets them
// by oracle verdict. The driver owns the retry/restart/fail-safe state for
// one invocation of Run.
//
// A source that signals exhaustion is discarded and rebuilt through the
// factory; the run ends normally once either the iteration or the restart
// budget is spent, even if fewer inputs than requested were found.
type SolverDriver struct {
	Factory          core.SourceFactory
	Oracle           core.Oracle
	Budget           core.Budget
	OnlyUniqueInputs bool
	Logger           *slog.Logger
	Metrics          *metrics.GenerationMetrics
}

// Run executes the generation loop until a budget is exhausted. Oracle and
// source failures other than exhaustion abort the run and propagate.
func (d *SolverDriver) Run(ctx context.Context) (corpus.Buckets, error) {
	start := time.Now()
	defer d.Metrics.ObserveRun(solverDriverName, start)

	var buckets corpus.Buckets
	var state core.RunState

	source, err := d.Factory()
	if err != nil {
		return buckets, fmt.Errorf("construct source: %w", err)
	}

	for state.Accepted < d.Budget.MaxIterations && state.Restarts < d.Budget.MaxRestarts {
		candidate, err := source.Next(ctx)
		if errors.Is(err, core.ErrExhausted) {
			if source, err = d.restart(&state, &buckets); err != nil {
				return buckets, err
			}
			continue
		}
		if err != nil {
			return buckets, fmt.Errorf("next candidate: %w", err)
		}

		verdict, _, err := d.Oracle.Classify(ctx, candidate)
		if err != nil {
			return buckets, fmt.Errorf("classify candidate: %w", err)
		}
		d.Metrics.CandidatesTotal.WithLabelValues(solverDriverName, string(verdict)).Inc()

		// A run stuck on duplicates or undefined verdicts is forced into the
		// restart path before it can livelock.
		if state.FailSafe >= d.Budget.FailSafeThreshold {
			state.FailSafe = 0
			if source, err = d.restart(&state, &buckets); err != nil {
				return buckets, err
			}
			continue
		}

		input := candidate.String()
		if d.OnlyUniqueInputs && buckets.Contains(input) {
			state.FailSafe++
			d.Metrics.FailSafeTotal.WithLabelValues(solverDriverName).Inc()
			d.Metrics.DuplicateTotal.WithLabelValues(solverDriverName).Inc()
			continue
		}

		switch verdict {
		case core.VerdictPassing:
			buckets.Passing = append(buckets.Passing, input)
		case core.VerdictFailing:
			buckets.Failing = append(buckets.Failing, input)
		default:
			buckets.Undefined++
			state.FailSafe++
			d.Metrics.FailSafeTotal.WithLabelValues(solverDriverName).Inc()
			continue
		}

		state.Accepted++
		d.Metrics.AcceptedTotal.WithLabelValues(solverDriverName).Inc()
		if state.Accepted%10 == 0 {
			d.Logger.Info("solver progress",
				"failing", len(buckets.Failing),
				"passing", len(buckets.Passing),
				"accepted", state.Accepted)
		}
	}

	if d.OnlyUniqueInputs {
		buckets.Dedup()
	}

	d.Logger.Info("solver run finished",
		"failing", len(buckets.Failing),
		"passing", len(buckets.Passing),
		"undefined", buckets.Undefined,
		"restarts", state.Restarts,
		"unique", d.OnlyUniqueInputs)
	return buckets, nil
}

// restart replaces the exhausted source with a fresh instance built from the
// same settings. No iteration is consumed.
func (d *SolverDriver) restart(state *core.RunState, buckets *corpus.Buckets) (core.CandidateSource, error) {
	state.Restarts++
	d.Metrics.RestartsTotal.WithLabelValues(solverDriverName).Inc()
	if state.Restarts%10 == 0 {
		d.Logger.Info("solver source restarted",
			"restarts", state.Restarts,
			"max_restarts", d.Budget.MaxRestarts,
			"failing", len(buckets.Failing),
			"passing", len(buckets.Passing))
	}

	source, err := d.Factory()
	if err != nil {
		return nil, fmt.Errorf("rebuild source after exhaustion: %w", err)
	}
	return source, nil
}

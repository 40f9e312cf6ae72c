package generator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/repairlab/testgen/core"
	"github.com/repairlab/testgen/corpus"
	"github.com/repairlab/testgen/pkg/logging"
	"github.com/repairlab/testgen/pkg/metrics"
)

// SolverConstructor builds a candidate source for a (possibly negated)
// formula. The optimizedQueries flag is forwarded untouched.
type SolverConstructor func(formula core.Formula, optimizedQueries bool) (core.CandidateSource, error)

// Generator owns the long-lived corpus, its persistence, and the cached
// diagnosis between driver runs. One generator instance is the single writer
// of its corpus location.
type Generator struct {
	cfg      Config
	oracle   core.Oracle
	solver   SolverConstructor
	store    *corpus.Store
	saver    corpus.Saver
	formulas *corpus.FormulaStore
	logger   *logging.Logger
	metrics  *metrics.GenerationMetrics
	runID    string

	// diagnosis is the formula from the last explained failure, reused when
	// SolveFormula is called without an explicit formula.
	diagnosis core.Formula
}

// New validates the configuration and wires a generator. An invalid saving
// method fails here, before any run starts.
func New(cfg Config, oracle core.Oracle, solver SolverConstructor, logger *logging.Logger, m *metrics.GenerationMetrics) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	saver, err := corpus.NewSaver(cfg.SavingMethod, cfg.Overwrite)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	return &Generator{
		cfg:      cfg,
		oracle:   oracle,
		solver:   solver,
		store:    corpus.NewStore(),
		saver:    saver,
		formulas: corpus.NewFormulaStore(cfg.Out),
		logger:   logger.WithRunID(runID),
		metrics:  m,
		runID:    runID,
	}, nil
}

// RunID returns the identifier attached to this generator's runs.
func (g *Generator) RunID() string { return g.runID }

// Store exposes the accumulated corpus.
func (g *Generator) Store() *corpus.Store { return g.store }

// SetDiagnosis caches the formula explaining the target failure and persists
// its unparsed text under the configured identifier slot.
func (g *Generator) SetDiagnosis(formula core.Formula) error {
	g.diagnosis = formula
	path, err := g.formulas.Save(g.cfg.Identifier, formula.Unparse())
	if err != nil {
		return err
	}
	g.logger.Info("saved formula", "path", path)
	return nil
}

// LoadFormula returns the persisted formula text for the named slot. A
// missing formula is reported, not raised.
func (g *Generator) LoadFormula(identifier string) (string, bool, error) {
	text, found, err := g.formulas.Load(identifier)
	if err != nil {
		return "", false, err
	}
	if !found {
		g.logger.Info("no cached formula found", "identifier", identifier)
	}
	return text, found, nil
}

// SolveFormula generates up to maxIterations labeled inputs satisfying the
// formula (or its complement when NegateFormula is set) and extends the
// corpus with them. With a nil formula and no cached diagnosis this is a
// no-op with a notice.
func (g *Generator) SolveFormula(ctx context.Context, formula core.Formula, maxIterations int) error {
	if formula == nil {
		formula = g.diagnosis
	}
	if formula == nil {
		g.logger.Info("no diagnosis or formula was found, skipping generation")
		return nil
	}
	if g.solver == nil {
		return errors.New("generator: no solver constructor configured")
	}

	query := formula
	if g.cfg.NegateFormula {
		query = formula.Negate()
	}

	driver := &SolverDriver{
		Factory: func() (core.CandidateSource, error) {
			return g.solver(query, g.cfg.OptimizedQueries)
		},
		Oracle:           g.oracle,
		Budget:           core.DefaultBudget(maxIterations),
		OnlyUniqueInputs: g.cfg.OnlyUniqueInputs,
		Logger:           g.logger.Slog(),
		Metrics:          g.metrics,
	}

	buckets, err := driver.Run(ctx)
	if err != nil {
		return err
	}
	g.store.Extend(buckets)

	if _, err := g.formulas.Save(g.cfg.Identifier, formula.Unparse()); err != nil {
		return err
	}
	return g.autoSave()
}

// RunFuzzer generates labeled inputs from a random grammar-based source.
// The run's deduplicated buckets replace the corpus content.
func (g *Generator) RunFuzzer(ctx context.Context, source core.CandidateSource, numFailing, numPassing, maxIterations int) error {
	driver := &Fuzzer{
		Source:        source,
		Oracle:        g.oracle,
		NumFailing:    numFailing,
		NumPassing:    numPassing,
		MaxIterations: maxIterations,
		Logger:        g.logger.Slog(),
		Metrics:       g.metrics,
	}

	buckets, err := driver.Run(ctx)
	if err != nil {
		return err
	}
	g.store.Replace(buckets)

	return g.autoSave()
}

// SaveTestCases persists the corpus under an explicit directory. It runs
// regardless of SaveAutomatically.
func (g *Generator) SaveTestCases(dir string) error {
	return g.save(dir)
}

func (g *Generator) autoSave() error {
	if !g.cfg.SaveAutomatically {
		return nil
	}
	return g.save(filepath.Join(g.cfg.Out, "test_cases"))
}

func (g *Generator) save(dir string) error {
	passing := g.store.Passing()
	failing := g.store.Failing()
	if err := g.saver.Save(dir, passing, failing); err != nil {
		return fmt.Errorf("save corpus: %w", err)
	}
	g.metrics.SavesTotal.WithLabelValues(g.cfg.SavingMethod).Inc()
	g.logger.Info("saved test cases",
		"count", len(passing)+len(failing),
		"dir", dir,
		"method", g.cfg.SavingMethod)
	return nil
}

// Package generator drives automated generation of labeled test inputs: it
// pulls candidates from a source, classifies them with an oracle, and
// accumulates the results into a persisted corpus under strict budgets.
package generator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/repairlab/testgen/corpus"
)

// Config is the consolidated configuration record for a generator instance.
//
// SaveAutomatically gates only the end-of-run save; explicit SaveTestCases
// calls always run. Overwrite controls whether the target directory is
// cleared when a save is actually performed, automatic or explicit.
type Config struct {
	// SavingMethod selects the on-disk corpus encoding: "files" or "json".
	SavingMethod string `yaml:"saving_method"`
	// SaveAutomatically persists the corpus at the end of every run.
	SaveAutomatically bool `yaml:"save_automatically"`
	// Overwrite clears the target directory before a save is written.
	Overwrite bool `yaml:"overwrite"`
	// OnlyUniqueInputs rejects candidates already present in the run's
	// buckets and deduplicates the buckets after the run.
	OnlyUniqueInputs bool `yaml:"only_unique_inputs"`
	// NegateFormula queries the complement of the constraint formula.
	NegateFormula bool `yaml:"negate_formula"`
	// OptimizedQueries is forwarded to the solver source; it has no
	// driver-level semantics.
	OptimizedQueries bool `yaml:"optimized_queries"`
	// Identifier names the slot the solved formula is persisted under.
	Identifier string `yaml:"identifier"`
	// Out is the root directory for corpus and formula artifacts.
	Out string `yaml:"out"`
	// Seed initializes the pseudo-random generator owned by the run.
	Seed int64 `yaml:"seed"`
}

// DefaultConfig returns the configuration the original tooling assumes:
// files encoding, automatic saving, no dedup policy.
func DefaultConfig(out string) Config {
	return Config{
		SavingMethod:      corpus.MethodFiles,
		SaveAutomatically: true,
		Identifier:        "formula",
		Out:               out,
	}
}

// LoadProfile reads a configuration record from a YAML file. A missing file
// yields the defaults for the given output directory.
func LoadProfile(path, out string) (Config, error) {
	cfg := DefaultConfig(out)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read profile %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if cfg.Out == "" {
		cfg.Out = out
	}
	return cfg, cfg.Validate()
}

// Validate rejects configuration errors before any run starts.
func (c *Config) Validate() error {
	if c.SavingMethod != corpus.MethodFiles && c.SavingMethod != corpus.MethodJSON {
		return fmt.Errorf("invalid saving method %q: use %q or %q",
			c.SavingMethod, corpus.MethodFiles, corpus.MethodJSON)
	}
	if c.Out == "" {
		return fmt.Errorf("output directory must be set")
	}
	if c.Identifier == "" {
		c.Identifier = "formula"
	}
	return nil
}

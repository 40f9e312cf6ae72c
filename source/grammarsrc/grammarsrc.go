// Package grammarsrc draws random candidates from a context-free grammar by
// repeated expansion of nonterminal symbols. A grammar-based random source
// has no notion of exhaustion.
package grammarsrc

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/repairlab/testgen/core"
)

var nonterminalRE = regexp.MustCompile(`<[^<>\s]+>`)

// Grammar maps nonterminal symbols (written <name>) to their expansion
// alternatives. Alternatives may mix terminals and nonterminals.
type Grammar struct {
	StartSymbol string              `yaml:"start"`
	Rules       map[string][]string `yaml:"rules"`
}

// Start returns the start symbol; it also satisfies core.Grammar.
func (g *Grammar) Start() string { return g.StartSymbol }

// Validate checks that the start symbol and every referenced nonterminal
// have expansion rules, and that every nonterminal can reach a terminal-only
// derivation.
func (g *Grammar) Validate() error {
	if _, ok := g.Rules[g.StartSymbol]; !ok {
		return fmt.Errorf("start symbol %q has no rule", g.StartSymbol)
	}
	for symbol, alternatives := range g.Rules {
		for _, alternative := range alternatives {
			for _, ref := range nonterminalRE.FindAllString(alternative, -1) {
				if _, ok := g.Rules[ref]; !ok {
					return fmt.Errorf("rule %q references undefined nonterminal %q", symbol, ref)
				}
			}
		}
	}

	// Fixed point over the terminating set: a nonterminal terminates when
	// some alternative references only nonterminals already known to
	// terminate. Anything left outside the set can never expand to a finite
	// string, so deriving from it would recurse without bound.
	terminating := make(map[string]bool, len(g.Rules))
	for changed := true; changed; {
		changed = false
		for symbol, alternatives := range g.Rules {
			if terminating[symbol] {
				continue
			}
			for _, alternative := range alternatives {
				ok := true
				for _, ref := range nonterminalRE.FindAllString(alternative, -1) {
					if !terminating[ref] {
						ok = false
						break
					}
				}
				if ok {
					terminating[symbol] = true
					changed = true
					break
				}
			}
		}
	}
	for symbol := range g.Rules {
		if !terminating[symbol] {
			return fmt.Errorf("rule %q has no finite derivation", symbol)
		}
	}
	return nil
}

// Parse reads a grammar from YAML.
func Parse(data []byte) (*Grammar, error) {
	var g Grammar
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Load reads a grammar from a YAML file.
func Load(path string) (*Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grammar %s: %w", path, err)
	}
	return Parse(data)
}

// Source produces random derivations of a grammar. The pseudo-random
// generator is owned by the source and threaded through every expansion, so
// two sources never interfere and runs are reproducible from a seed.
type Source struct {
	grammar  *Grammar
	rng      *rand.Rand
	maxDepth int
}

// New creates a random source over the grammar using the given generator.
func New(grammar *Grammar, rng *rand.Rand) *Source {
	return &Source{grammar: grammar, rng: rng, maxDepth: 16}
}

// Next derives one candidate. It never signals exhaustion.
func (s *Source) Next(ctx context.Context) (core.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return core.Input(s.expand(s.grammar.StartSymbol, 0)), nil
}

func (s *Source) expand(symbol string, depth int) string {
	alternatives := s.grammar.Rules[symbol]
	if len(alternatives) == 0 {
		return symbol
	}

	var alternative string
	if depth >= s.maxDepth {
		alternative = s.shortestAlternative(alternatives)
	} else {
		alternative = alternatives[s.rng.Intn(len(alternatives))]
	}

	var b strings.Builder
	rest := alternative
	for {
		loc := nonterminalRE.FindStringIndex(rest)
		if loc == nil {
			b.WriteString(rest)
			return b.String()
		}
		b.WriteString(rest[:loc[0]])
		b.WriteString(s.expand(rest[loc[0]:loc[1]], depth+1))
		rest = rest[loc[1]:]
	}
}

// shortestAlternative prefers the expansion with the fewest nonterminals so
// deep derivations terminate.
func (s *Source) shortestAlternative(alternatives []string) string {
	best := alternatives[0]
	bestCount := len(nonterminalRE.FindAllString(best, -1))
	for _, alternative := range alternatives[1:] {
		count := len(nonterminalRE.FindAllString(alternative, -1))
		if count < bestCount {
			best, bestCount = alternative, count
		}
	}
	return best
}

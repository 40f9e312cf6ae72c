// Package localize filters and reweights ranked fault locations before they
// are handed to the mutation engine.
package localize

import (
	"fmt"
	"math"

	"github.com/repairlab/testgen/core"
)

// Modifier narrows the suggestions from fault localization to the locations
// worth mutating and decides the chance that a selected location is mutated.
type Modifier interface {
	Locations(suggestions []core.WeightedIdentifier) []core.WeightedIdentifier
	MutationChance(location core.WeightedIdentifier) float64
}

// Default keeps every suggestion in its original order and uses the stored
// weight as the mutation chance.
type Default struct{}

// NewDefault creates the identity modifier.
func NewDefault() *Default { return &Default{} }

func (m *Default) Locations(suggestions []core.WeightedIdentifier) []core.WeightedIdentifier {
	out := make([]core.WeightedIdentifier, len(suggestions))
	copy(out, suggestions)
	return out
}

func (m *Default) MutationChance(location core.WeightedIdentifier) float64 {
	return location.Weight
}

// TopRank keeps only the first TopK suggestions, dropping any with a weight
// of zero or below. Every kept location is mutated unconditionally.
type TopRank struct {
	TopK int
}

// NewTopRank creates a modifier that keeps the first topK ranked locations.
func NewTopRank(topK int) *TopRank { return &TopRank{TopK: topK} }

func (m *TopRank) Locations(suggestions []core.WeightedIdentifier) []core.WeightedIdentifier {
	head := suggestions
	if len(head) > m.TopK {
		head = head[:m.TopK]
	}
	out := make([]core.WeightedIdentifier, 0, len(head))
	for _, location := range head {
		if location.Weight > 0 {
			out = append(out, location)
		}
	}
	return out
}

func (m *TopRank) MutationChance(location core.WeightedIdentifier) float64 {
	return 1.0
}

// TopEqualRank keeps the locations whose weight is among the first TopK
// distinct weight values in suggestion order and strictly above Threshold.
// Locations sharing a top weight are all retained, even past TopK items.
type TopEqualRank struct {
	TopK      int
	Threshold float64
}

// NewTopEqualRank creates a modifier ranking by distinct weight values.
func NewTopEqualRank(topK int, threshold float64) *TopEqualRank {
	return &TopEqualRank{TopK: topK, Threshold: threshold}
}

func (m *TopEqualRank) Locations(suggestions []core.WeightedIdentifier) []core.WeightedIdentifier {
	topWeights := make([]float64, 0, m.TopK)
	for _, suggestion := range suggestions {
		if !containsWeight(topWeights, suggestion.Weight) {
			topWeights = append(topWeights, suggestion.Weight)
		}
		if len(topWeights) >= m.TopK {
			break
		}
	}

	out := make([]core.WeightedIdentifier, 0, len(suggestions))
	for _, location := range suggestions {
		if containsWeight(topWeights, location.Weight) && location.Weight > m.Threshold {
			out = append(out, location)
		}
	}
	return out
}

func (m *TopEqualRank) MutationChance(location core.WeightedIdentifier) float64 {
	return 1.0
}

func containsWeight(weights []float64, w float64) bool {
	for _, have := range weights {
		if have == w {
			return true
		}
	}
	return false
}

// Sigmoid reweights every suggestion along a sigmoid curve: weights above
// the midpoint are pushed toward 1.0, weights below it toward 0.0. The
// reweighted value doubles as the mutation chance.
type Sigmoid struct {
	Steepness float64
	Midpoint  float64
}

// NewSigmoid creates a sigmoid modifier. The midpoint must lie strictly
// between 0 and 1.
func NewSigmoid(steepness, midpoint float64) (*Sigmoid, error) {
	if midpoint <= 0 || midpoint >= 1 {
		return nil, fmt.Errorf("sigmoid midpoint must be in (0,1), got %v", midpoint)
	}
	return &Sigmoid{Steepness: steepness, Midpoint: midpoint}, nil
}

func (m *Sigmoid) Locations(suggestions []core.WeightedIdentifier) []core.WeightedIdentifier {
	out := make([]core.WeightedIdentifier, len(suggestions))
	for i, location := range suggestions {
		out[i] = core.WeightedIdentifier{
			Identifier: location.Identifier,
			Weight:     m.reweight(location.Weight),
		}
	}
	return out
}

func (m *Sigmoid) MutationChance(location core.WeightedIdentifier) float64 {
	return location.Weight
}

func (m *Sigmoid) reweight(weight float64) float64 {
	above := math.Pow(weight/m.Midpoint, m.Steepness)
	below := math.Pow((1-weight)/(1-m.Midpoint), m.Steepness)
	return above / (above + below)
}

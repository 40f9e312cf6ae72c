package core

// Verdict is the oracle's classification of one candidate input.
type Verdict string

const (
	VerdictPassing   Verdict = "PASSING"
	VerdictFailing   Verdict = "FAILING"
	VerdictUndefined Verdict = "UNDEFINED" // inconclusive, neither confirmed pass nor fail
)

// Metadata carries opaque diagnostic data returned by an oracle.
// It is never inspected for control flow.
type Metadata map[string]string

// WeightedIdentifier pairs an opaque location handle with a suspiciousness
// weight in [0,1]. Weight is always defined; NaN is not a legal value.
type WeightedIdentifier struct {
	Identifier string
	Weight     float64
}

// Budget bounds one driver invocation.
type Budget struct {
	MaxIterations     int // accepted candidates before the run ends
	MaxRestarts       int // source rebuilds before the run ends
	FailSafeThreshold int // duplicate/undefined results before a forced restart
}

const (
	DefaultMaxRestarts       = 100
	DefaultFailSafeThreshold = 50
)

// DefaultBudget returns a budget with the standard restart and fail-safe
// limits for the given iteration cap.
func DefaultBudget(maxIterations int) Budget {
	return Budget{
		MaxIterations:     maxIterations,
		MaxRestarts:       DefaultMaxRestarts,
		FailSafeThreshold: DefaultFailSafeThreshold,
	}
}

// RunState tracks one driver invocation. It is owned by the driver and reset
// on every call.
type RunState struct {
	Accepted int
	Restarts int
	FailSafe int
}

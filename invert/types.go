// Package invert: configuration, enums and run-level result types.
package invert

import "github.com/katalvlaran/waveinv/earthmodel"

// Mode selects how the controller picks its step strategy per iteration.
type Mode int

const (
	// ModeAlternate uses gradient descent on even iteration counts and
	// quasi-Newton on odd counts, trading robustness under strong
	// nonlinearity for speed near a minimum.
	ModeAlternate Mode = iota
	// ModeGradientOnly pins every iteration to the gradient-descent
	// strategy.
	ModeGradientOnly
	// ModeQuasiNewtonOnly pins every iteration to the quasi-Newton
	// strategy.
	ModeQuasiNewtonOnly
)

// String returns a stable name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeAlternate:
		return "alternate"
	case ModeGradientOnly:
		return "gradient-descent"
	case ModeQuasiNewtonOnly:
		return "quasi-newton"
	default:
		return "unknown"
	}
}

// Status is the terminal (or in-flight) state of an inversion run.
type Status int

const (
	// StatusIterating means the run has not reached a terminal state.
	StatusIterating Status = iota
	// StatusConverged means an accepted step improved the objective by no
	// more than the configured Tolerance.
	StatusConverged
	// StatusMaxIterReached means the accepted-iteration counter hit the
	// configured maximum.
	StatusMaxIterReached
	// StatusStepTooSmall means the active strategy's step size fell below
	// the floor while the objective kept regressing; treated as
	// convergence/give-up, not as an error.
	StatusStepTooSmall
)

// String returns a stable name for the status.
func (s Status) String() string {
	switch s {
	case StatusIterating:
		return "iterating"
	case StatusConverged:
		return "converged"
	case StatusMaxIterReached:
		return "max-iterations"
	case StatusStepTooSmall:
		return "step-too-small"
	default:
		return "unknown"
	}
}

// DampingVector holds one prior standard deviation per parameter type,
// indexed by earthmodel.ParamType. A zero entry is a hard prior: that
// type's covariance collapses to zero and its parameters never move away
// from the reference value.
type DampingVector [earthmodel.NumParamTypes]float64

// PriorBounds holds the inclusive admissible range per parameter type,
// indexed by earthmodel.ParamType.
type PriorBounds struct {
	Min [earthmodel.NumParamTypes]float64
	Max [earthmodel.NumParamTypes]float64
}

// DefaultPriorBounds returns the fixed physical admissibility ranges:
// density 100–8000 kg/m³, shear velocity 500–10000 m/s, anisotropy ratio
// 0.5–1.5, Vp/Vs ratio 1.0–2.5.
func DefaultPriorBounds() PriorBounds {
	return PriorBounds{
		Min: [earthmodel.NumParamTypes]float64{0.1e3, 0.5e3, 0.5, 1.0},
		Max: [earthmodel.NumParamTypes]float64{8.0e3, 10.0e3, 1.5, 2.5},
	}
}

// Default run parameters, mirroring the reference driver.
const (
	// DefaultEpsilon is the initial step size of both strategies.
	DefaultEpsilon = 1.0
	// DefaultEpsilonMin is the step-size floor below which a regressing
	// strategy gives up.
	DefaultEpsilonMin = 1e-10
	// DefaultMaxIterations caps the accepted-iteration counter.
	DefaultMaxIterations = 5
)

// Options configures an inversion run.
//   - Epsilon: initial step size, shared as the starting value of both
//     strategies' independent ε states. Must be positive.
//   - EpsilonMin: floor under which a regressing strategy terminates the
//     run in StatusStepTooSmall. Must be positive.
//   - MaxIterations: accepted-iteration cap. Must be at least 1.
//   - Damping: per-type prior standard deviations (zero ⇒ hard prior).
//   - Bounds: per-type inclusive admissibility ranges.
//   - Mode: strategy schedule (alternate or pinned).
//   - Tolerance: optional absolute objective-improvement threshold for
//     StatusConverged; zero disables the check, preserving the reference
//     exit-only-by-cap-or-floor behavior.
//   - OnIteration: optional observer invoked after every accepted step and
//     every backtrack. Must not mutate the run.
type Options struct {
	Epsilon       float64
	EpsilonMin    float64
	MaxIterations int
	Damping       DampingVector
	Bounds        PriorBounds
	Mode          Mode
	Tolerance     float64
	OnIteration   func(IterationInfo)
}

// DefaultOptions returns the reference-driver defaults: ε=1, floor 1e-10,
// five iterations, zero damping, default bounds, alternating schedule.
func DefaultOptions() Options {
	return Options{
		Epsilon:       DefaultEpsilon,
		EpsilonMin:    DefaultEpsilonMin,
		MaxIterations: DefaultMaxIterations,
		Bounds:        DefaultPriorBounds(),
		Mode:          ModeAlternate,
	}
}

// validate enforces option invariants.
func (o *Options) validate() error {
	switch {
	case o.Epsilon <= 0,
		o.EpsilonMin <= 0,
		o.MaxIterations < 1,
		o.Tolerance < 0,
		o.Mode < ModeAlternate || o.Mode > ModeQuasiNewtonOnly:
		return ErrBadOptions
	}
	for t := 0; t < earthmodel.NumParamTypes; t++ {
		if o.Damping[t] < 0 || o.Bounds.Min[t] > o.Bounds.Max[t] {
			return ErrBadOptions
		}
	}
	return nil
}

// IterationInfo is the payload of the OnIteration observer.
type IterationInfo struct {
	// Iteration is the accepted-iteration counter at the time of the event.
	Iteration int
	// Strategy is the active strategy's name.
	Strategy string
	// Objective is the objective after the event (post-restore objective
	// for a backtrack).
	Objective float64
	// Epsilon is the active strategy's step size after the event.
	Epsilon float64
	// Backtracked reports whether the event was a backtrack rather than an
	// accepted step.
	Backtracked bool
}

// Result summarizes a finished run.
type Result struct {
	// Status is the terminal state.
	Status Status
	// Iterations is the number of accepted steps.
	Iterations int
	// InitialObjective is the objective of the starting model.
	InitialObjective float64
	// Objective is the objective of the final committed model state.
	Objective float64
	// EvaluatorCalls counts forward evaluations, including the initial one
	// and the re-evaluation after every restore.
	EvaluatorCalls int
}

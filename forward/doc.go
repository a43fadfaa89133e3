// Package forward defines the boundary between the inversion core and the
// forward physical model.
//
// An Evaluator maps a structured earth model to a scalar objective (lower is
// better), the residual vector, the Jacobian of the data with respect to the
// flattened parameters, the adjoint gradient of the objective, and the
// diagonal data covariance. Evaluators must be deterministic for identical
// inputs — the controller's backtracking relies on re-evaluating a restored
// model state and obtaining the original objective.
//
// The spectral-element Love-wave solver stays outside this module. The
// package ships Linearized, an exact Gaussian objective around a fixed base
// Jacobian and base predictions (loaded from a sensitivity-kernel file),
// which exercises the complete inversion loop without any wave physics.
package forward

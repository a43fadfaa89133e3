package invert

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/waveinv/earthmodel"
)

// StepInput is the full state a strategy needs to propose a parameter
// vector. All slices share the flattened-parameter length except Residuals
// and DataCov, which share the residual count (the Jacobian's row count).
type StepInput struct {
	// Epsilon is the strategy's current step size.
	Epsilon float64
	// DataCov is the diagonal data covariance Cd, strictly positive.
	DataCov []float64
	// ModelCov is the diagonal model covariance Cm; a zero entry pins its
	// parameter to the reference value (hard prior).
	ModelCov []float64
	// Residuals holds observed minus predicted values.
	Residuals []float64
	// Jacobian G has one column per flattened parameter.
	Jacobian *mat.Dense
	// Gradient is the adjoint gradient dL/dp of the objective.
	Gradient []float64
	// Mask flags fixed entries; only free entries may change.
	Mask []int
	// Current is the working parameter vector.
	Current []float64
	// Reference is the immutable prior/starting vector.
	Reference []float64
}

// Stepper computes a proposed parameter vector from the current inversion
// state. Implementations must leave fixed entries equal to Current, pin
// zero-covariance entries to Reference, and — on error — make no proposal
// rather than produce non-finite values. Exactly two implementations exist:
// GradientStep and QuasiNewtonStep.
type Stepper interface {
	// Step returns the proposed vector, or an error when no finite
	// proposal can be computed at this state.
	Step(in StepInput) ([]float64, error)
	// Name identifies the strategy in logs and iteration callbacks.
	Name() string
}

// GradientStep is the plain gradient-descent strategy:
//
//	proposed = current − ε · dL/dp
//
// restricted to free, soft-prior entries. The proposal is monotone in ε and
// ε = 0 is the identity.
type GradientStep struct{}

// Name implements Stepper.
func (GradientStep) Name() string { return "gradient-descent" }

// Step implements Stepper. It fails with ErrBadGradient when any free
// gradient entry is non-finite, since no ε could then yield an admissible
// proposal. Complexity: O(nparam).
func (GradientStep) Step(in StepInput) ([]float64, error) {
	n := len(in.Current)
	if len(in.Gradient) != n || len(in.Mask) != n || len(in.Reference) != n || len(in.ModelCov) != n {
		return nil, ErrDimensionMismatch
	}
	proposed := make([]float64, n)
	for i := 0; i < n; i++ {
		switch {
		case in.Mask[i] != earthmodel.MaskFree:
			proposed[i] = in.Current[i]
		case in.ModelCov[i] == 0:
			proposed[i] = in.Reference[i]
		default:
			if math.IsNaN(in.Gradient[i]) || math.IsInf(in.Gradient[i], 0) {
				return nil, ErrBadGradient
			}
			proposed[i] = in.Current[i] - in.Epsilon*in.Gradient[i]
		}
	}
	return proposed, nil
}

// QuasiNewtonStep is the Gauss-Newton-style strategy. It assembles the
// regularized normal system over the free, soft-prior entries,
//
//	(Gᵗ·Cd⁻¹·G + Cm⁻¹) · t = Gᵗ·Cd⁻¹·(residuals + G·(current − reference)),
//
// solves it by Cholesky factorization for the Newton target
// reference + t, then scales the displacement from current by ε:
//
//	proposed = current + ε · (target − current)
//
// so ε acts as a trust-region damping factor rather than a raw step scale.
type QuasiNewtonStep struct{}

// Name implements Stepper.
func (QuasiNewtonStep) Name() string { return "quasi-newton" }

// Step implements Stepper. It fails with ErrSingularSystem when the normal
// system cannot be factorized or yields a non-finite solution — never with
// a NaN proposal. Complexity: O(nres·nf²) assembly plus O(nf³) solve for
// nf free entries.
func (QuasiNewtonStep) Step(in StepInput) ([]float64, error) {
	n := len(in.Current)
	if in.Jacobian == nil {
		return nil, ErrDimensionMismatch
	}
	nres, cols := in.Jacobian.Dims()
	if cols != n || len(in.Mask) != n || len(in.Reference) != n ||
		len(in.ModelCov) != n || len(in.Residuals) != nres || len(in.DataCov) != nres {
		return nil, ErrDimensionMismatch
	}
	for _, cd := range in.DataCov {
		if !(cd > 0) {
			return nil, ErrBadDataCovariance
		}
	}

	// Free soft-prior entries participate in the solve; the rest are
	// carried over (fixed) or pinned to the reference (hard prior).
	free := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if in.Mask[i] == earthmodel.MaskFree && in.ModelCov[i] > 0 {
			free = append(free, i)
		}
	}

	proposed := make([]float64, n)
	for i := 0; i < n; i++ {
		if in.Mask[i] != earthmodel.MaskFree {
			proposed[i] = in.Current[i]
		} else {
			proposed[i] = in.Reference[i] // overwritten below for soft entries
		}
	}
	if len(free) == 0 {
		return proposed, nil
	}

	// w = residuals + G·(current − reference), using the full Jacobian.
	delta := make([]float64, n)
	for i := 0; i < n; i++ {
		delta[i] = in.Current[i] - in.Reference[i]
	}
	var gd mat.VecDense
	gd.MulVec(in.Jacobian, mat.NewVecDense(n, delta))
	w := make([]float64, nres)
	for k := 0; k < nres; k++ {
		w[k] = (in.Residuals[k] + gd.AtVec(k)) / in.DataCov[k]
	}

	nf := len(free)
	normal := mat.NewSymDense(nf, nil)
	rhs := mat.NewVecDense(nf, nil)
	for a := 0; a < nf; a++ {
		ia := free[a]
		ba := 0.0
		for k := 0; k < nres; k++ {
			ba += in.Jacobian.At(k, ia) * w[k]
		}
		rhs.SetVec(a, ba)
		for b := a; b < nf; b++ {
			ib := free[b]
			s := 0.0
			for k := 0; k < nres; k++ {
				s += in.Jacobian.At(k, ia) * in.Jacobian.At(k, ib) / in.DataCov[k]
			}
			if a == b {
				s += 1 / in.ModelCov[ia]
			}
			normal.SetSym(a, b, s)
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(normal) {
		return nil, ErrSingularSystem
	}
	var t mat.VecDense
	if err := chol.SolveVecTo(&t, rhs); err != nil {
		return nil, ErrSingularSystem
	}

	for a, ia := range free {
		target := in.Reference[ia] + t.AtVec(a)
		if math.IsNaN(target) || math.IsInf(target, 0) {
			return nil, ErrSingularSystem
		}
		proposed[ia] = in.Current[ia] + in.Epsilon*(target-in.Current[ia])
	}
	return proposed, nil
}

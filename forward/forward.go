package forward

import (
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/waveinv/earthmodel"
)

// Result carries one forward evaluation. Residuals, Gradient and DataCov
// are freshly allocated per call; Jacobian may be shared between calls when
// the operator is constant (as in Linearized).
type Result struct {
	// Objective is the scalar misfit, lower is better.
	Objective float64
	// Residuals holds observed minus predicted values.
	Residuals []float64
	// Jacobian has one row per residual and one column per flattened
	// parameter, in earthmodel.Flatten column order.
	Jacobian *mat.Dense
	// Gradient is the adjoint derivative of the objective with respect to
	// every flattened parameter.
	Gradient []float64
	// DataCov is the diagonal of the data covariance, one entry per
	// residual, strictly positive.
	DataCov []float64
}

// Evaluator is the forward-model collaborator of the inversion controller.
// Evaluate must be deterministic: identical model states yield identical
// Results.
type Evaluator interface {
	Evaluate(m *earthmodel.Model) (Result, error)
}

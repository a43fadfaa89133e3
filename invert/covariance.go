package invert

import "github.com/katalvlaran/waveinv/earthmodel"

// NewModelCovariance builds the diagonal model covariance: one entry per
// flattened parameter, the squared prior standard deviation of the entry's
// type. A zero damping value collapses that type's covariance to zero,
// which the step strategies treat as a hard prior — the parameter never
// moves away from its reference value.
// Complexity: O(nparam).
func NewModelCovariance(types []earthmodel.ParamType, damping DampingVector) []float64 {
	cm := make([]float64, len(types))
	for i, t := range types {
		cm[i] = damping[t] * damping[t]
	}
	return cm
}

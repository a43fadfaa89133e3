package invert

import (
	"math"

	"github.com/katalvlaran/waveinv/earthmodel"
)

// Validate reports whether every free entry of the vector lies inside its
// type's inclusive prior range. NaN never validates. Fixed entries are not
// checked. The check is a pure predicate with no side effects.
// Complexity: O(nparam).
func Validate(vector []float64, mask []int, types []earthmodel.ParamType, bounds PriorBounds) bool {
	for i, v := range vector {
		if mask[i] != earthmodel.MaskFree {
			continue
		}
		t := types[i]
		if math.IsNaN(v) || v < bounds.Min[t] || v > bounds.Max[t] {
			return false
		}
	}
	return true
}

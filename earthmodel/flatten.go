package earthmodel

// Mask flag values produced by Flatten. A free entry may be mutated by a
// step strategy; a fixed entry must always equal the current vector's value.
const (
	// MaskFree marks a parameter that participates in optimization.
	MaskFree = 0
	// MaskFixed marks a parameter excluded from optimization.
	MaskFixed = 1
)

// Flatten projects the structured model into a contiguous parameter vector,
// together with a parallel free/fixed mask and an explicit ParamType tag per
// entry.
//
// The ordering is fixed and order-stable across calls: cells shallow to
// deep, polynomial nodes in ascending order within a cell, and within every
// node the four types in the sequence rho, vs, xi, vpvs. Jacobian columns
// supplied by a forward evaluator follow the same convention.
//
// Flatten followed by Unflatten (or vice versa) is a lossless round trip.
// Complexity: O(nparam) time and memory.
func Flatten(m *Model) (vector []float64, mask []int, types []ParamType, err error) {
	if m == nil || len(m.Cells) == 0 {
		return nil, nil, nil, ErrEmptyModel
	}
	n := m.NumParameters()
	vector = make([]float64, 0, n)
	mask = make([]int, 0, n)
	types = make([]ParamType, 0, n)
	for i := range m.Cells {
		c := &m.Cells[i]
		flag := MaskFree
		if c.Fixed {
			flag = MaskFixed
		}
		for j := 0; j <= c.Order(); j++ {
			for t := ParamType(0); t < NumParamTypes; t++ {
				vector = append(vector, c.Coeff[t][j])
				mask = append(mask, flag)
				types = append(types, t)
			}
		}
	}
	return vector, mask, types, nil
}

// Unflatten writes a parameter vector's values back into the structured
// model, in the same fixed ordering used by Flatten. It returns
// ErrLengthMismatch if the vector's length does not match the model layout.
// Complexity: O(nparam).
func Unflatten(vector []float64, m *Model) error {
	if m == nil || len(m.Cells) == 0 {
		return ErrEmptyModel
	}
	if len(vector) != m.NumParameters() {
		return ErrLengthMismatch
	}
	k := 0
	for i := range m.Cells {
		c := &m.Cells[i]
		for j := 0; j <= c.Order(); j++ {
			for t := ParamType(0); t < NumParamTypes; t++ {
				c.Coeff[t][j] = vector[k]
				k++
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the model, including coefficient rows.
// Used by the inversion controller to snapshot the pre-step state.
func (m *Model) Clone() *Model {
	out := &Model{Cells: make([]Cell, len(m.Cells))}
	for i := range m.Cells {
		c := m.Cells[i]
		nc := Cell{Thickness: c.Thickness, Fixed: c.Fixed}
		for t := 0; t < NumParamTypes; t++ {
			nc.Coeff[t] = append([]float64(nil), c.Coeff[t]...)
		}
		out.Cells[i] = nc
	}
	return out
}

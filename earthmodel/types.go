// Package earthmodel: core types for the layered model and its flat
// parameter-vector view.
package earthmodel

// ParamType tags a single flattened parameter with the physical quantity it
// represents. Tags are attached explicitly to every vector entry by Flatten
// rather than being re-derived from the entry's position, so prior bounds
// and damping tables never depend on the flat layout.
type ParamType int

const (
	// Density is the mass density row of a cell (kg/m³).
	Density ParamType = iota
	// ShearVelocity is the horizontally polarized shear wavespeed row (m/s).
	ShearVelocity
	// Anisotropy is the radial anisotropy ratio row (dimensionless).
	Anisotropy
	// VelocityRatio is the Vp/Vs ratio row (dimensionless).
	VelocityRatio

	// NumParamTypes is the number of distinct parameter types per node.
	NumParamTypes = 4
)

// String returns the conventional short name of the parameter type.
func (p ParamType) String() string {
	switch p {
	case Density:
		return "rho"
	case ShearVelocity:
		return "vs"
	case Anisotropy:
		return "xi"
	case VelocityRatio:
		return "vpvs"
	default:
		return "unknown"
	}
}

// Cell is one layer of the model. Each of the four coefficient rows holds
// order+1 polynomial node values. A zero Thickness marks the terminal
// halfspace cell. Fixed excludes every parameter of the cell from
// optimization: its entries are flagged in the mask and never mutated by a
// step strategy.
type Cell struct {
	Thickness float64
	Fixed     bool
	Coeff     [NumParamTypes][]float64
}

// Order returns the polynomial order of the cell (nodes per row minus one).
func (c *Cell) Order() int {
	return len(c.Coeff[Density]) - 1
}

// Model is an ordered stack of cells, shallow layers first.
type Model struct {
	Cells []Cell
}

// NumParameters returns the length of the model's flattened parameter
// vector: four entries per polynomial node of every cell. The result is
// always a multiple of NumParamTypes.
func (m *Model) NumParameters() int {
	n := 0
	for i := range m.Cells {
		n += NumParamTypes * (m.Cells[i].Order() + 1)
	}
	return n
}

package earthmodel_test

import (
	"testing"

	"github.com/katalvlaran/waveinv/earthmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoCell builds a small two-cell model (order 1 on top of an order-0
// halfspace) with distinct values in every slot.
func twoCell() *earthmodel.Model {
	return &earthmodel.Model{Cells: []earthmodel.Cell{
		{
			Thickness: 10.0,
			Coeff: [earthmodel.NumParamTypes][]float64{
				{2600, 2650},  // rho
				{3200, 3300},  // vs
				{1.0, 1.05},   // xi
				{1.73, 1.75},  // vpvs
			},
		},
		{
			Thickness: 0, // halfspace
			Coeff: [earthmodel.NumParamTypes][]float64{
				{3300}, {4500}, {1.0}, {1.8},
			},
		},
	}}
}

// TestFlatten_Layout verifies the fixed node-major, rho/vs/xi/vpvs ordering
// and the nparam % 4 == 0 invariant.
func TestFlatten_Layout(t *testing.T) {
	m := twoCell()
	vec, mask, types, err := earthmodel.Flatten(m)
	require.NoError(t, err)

	assert.Equal(t, m.NumParameters(), len(vec))
	assert.Zero(t, len(vec)%earthmodel.NumParamTypes, "nparam must be a multiple of 4")
	assert.Len(t, mask, len(vec))
	assert.Len(t, types, len(vec))

	// First node of the first cell: rho, vs, xi, vpvs.
	assert.Equal(t, []float64{2600, 3200, 1.0, 1.73}, vec[:4])
	assert.Equal(t, []earthmodel.ParamType{
		earthmodel.Density, earthmodel.ShearVelocity,
		earthmodel.Anisotropy, earthmodel.VelocityRatio,
	}, types[:4])

	// Second node of the first cell follows before the halfspace.
	assert.Equal(t, []float64{2650, 3300, 1.05, 1.75}, vec[4:8])
	// Halfspace node last.
	assert.Equal(t, []float64{3300, 4500, 1.0, 1.8}, vec[8:12])
}

// TestFlatten_RoundTrip verifies that Unflatten(Flatten(M)) reproduces M.
func TestFlatten_RoundTrip(t *testing.T) {
	m := twoCell()
	vec, _, _, err := earthmodel.Flatten(m)
	require.NoError(t, err)

	other := twoCell()
	for i := range other.Cells {
		for t2 := 0; t2 < earthmodel.NumParamTypes; t2++ {
			for j := range other.Cells[i].Coeff[t2] {
				other.Cells[i].Coeff[t2][j] = 0 // scrub
			}
		}
	}
	require.NoError(t, earthmodel.Unflatten(vec, other))
	assert.Equal(t, m, other)
}

// TestFlatten_MaskFollowsFixedCells verifies that every entry of a Fixed
// cell is flagged MaskFixed and free cells are flagged MaskFree.
func TestFlatten_MaskFollowsFixedCells(t *testing.T) {
	m := twoCell()
	m.Cells[1].Fixed = true

	_, mask, _, err := earthmodel.Flatten(m)
	require.NoError(t, err)

	for i, flag := range mask {
		if i < 8 {
			assert.Equal(t, earthmodel.MaskFree, flag, "entry %d belongs to a free cell", i)
		} else {
			assert.Equal(t, earthmodel.MaskFixed, flag, "entry %d belongs to the fixed halfspace", i)
		}
	}
}

// TestFlatten_StableAcrossCalls verifies order stability: two flattenings
// of the same model produce identical vectors.
func TestFlatten_StableAcrossCalls(t *testing.T) {
	m := twoCell()
	v1, _, _, err := earthmodel.Flatten(m)
	require.NoError(t, err)
	v2, _, _, err := earthmodel.Flatten(m)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}

// TestUnflatten_LengthMismatch verifies the defensive length check.
func TestUnflatten_LengthMismatch(t *testing.T) {
	m := twoCell()
	err := earthmodel.Unflatten(make([]float64, 3), m)
	assert.ErrorIs(t, err, earthmodel.ErrLengthMismatch)
}

// TestFlatten_EmptyModel verifies ErrEmptyModel on a cell-less model.
func TestFlatten_EmptyModel(t *testing.T) {
	_, _, _, err := earthmodel.Flatten(&earthmodel.Model{})
	assert.ErrorIs(t, err, earthmodel.ErrEmptyModel)
}

// TestClone_Independent verifies that mutating a clone leaves the original
// untouched.
func TestClone_Independent(t *testing.T) {
	m := twoCell()
	c := m.Clone()
	c.Cells[0].Coeff[earthmodel.ShearVelocity][0] = 9999
	assert.Equal(t, 3200.0, m.Cells[0].Coeff[earthmodel.ShearVelocity][0])
}

package earthmodel

// Promote raises every cell of the model to the given polynomial order.
// Coefficient rows shorter than order+1 nodes are padded by replicating
// their last node value, which preserves the represented profile for
// constant-extended nodal bases. Cells already at or above the target order
// are left untouched, so Promote never discards resolution.
//
// Returns ErrBadOrder for orders below 1 and ErrEmptyModel for a model
// without cells. Complexity: O(ncells · order).
func (m *Model) Promote(order int) error {
	if m == nil || len(m.Cells) == 0 {
		return ErrEmptyModel
	}
	if order < 1 {
		return ErrBadOrder
	}
	for i := range m.Cells {
		c := &m.Cells[i]
		for t := 0; t < NumParamTypes; t++ {
			row := c.Coeff[t]
			if len(row) == 0 || len(row) >= order+1 {
				continue
			}
			last := row[len(row)-1]
			for len(row) < order+1 {
				row = append(row, last)
			}
			c.Coeff[t] = row
		}
	}
	return nil
}

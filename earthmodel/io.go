package earthmodel

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// File format: plain text, '#' comment lines and blank lines ignored.
// First value line holds the cell count. Each cell then contributes one
// header line "thickness order" followed by four coefficient lines of
// order+1 node values, in the row sequence rho, vs, xi, vpvs.

// Load reads a layered model from a file. The "promote" flag additionally
// raises every cell to promoteOrder (see Promote), which is how a coarse
// reference model is refined to the inversion's working order.
func Load(path string, promote bool, promoteOrder int) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("earthmodel: open %s: %w", path, err)
	}
	defer f.Close()

	lines := newLineReader(f)

	fields, err := lines.next()
	if err != nil {
		return nil, err
	}
	ncells, err := strconv.Atoi(fields[0])
	if err != nil || ncells < 1 {
		return nil, fmt.Errorf("%w: bad cell count %q", ErrBadFormat, fields[0])
	}

	m := &Model{Cells: make([]Cell, ncells)}
	for i := 0; i < ncells; i++ {
		fields, err = lines.next()
		if err != nil {
			return nil, err
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: cell %d header needs thickness and order", ErrBadFormat, i)
		}
		thickness, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: cell %d thickness %q", ErrBadFormat, i, fields[0])
		}
		order, err := strconv.Atoi(fields[1])
		if err != nil || order < 0 {
			return nil, fmt.Errorf("%w: cell %d order %q", ErrBadFormat, i, fields[1])
		}
		c := Cell{Thickness: thickness}
		for t := 0; t < NumParamTypes; t++ {
			fields, err = lines.next()
			if err != nil {
				return nil, err
			}
			if len(fields) != order+1 {
				return nil, fmt.Errorf("%w: cell %d row %s needs %d values, got %d",
					ErrBadFormat, i, ParamType(t), order+1, len(fields))
			}
			row := make([]float64, order+1)
			for j, s := range fields {
				if row[j], err = strconv.ParseFloat(s, 64); err != nil {
					return nil, fmt.Errorf("%w: cell %d row %s value %q", ErrBadFormat, i, ParamType(t), s)
				}
			}
			c.Coeff[t] = row
		}
		m.Cells[i] = c
	}

	if promote {
		if err = m.Promote(promoteOrder); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Save writes the model to a file in the format read by Load.
func (m *Model) Save(path string) error {
	if m == nil || len(m.Cells) == 0 {
		return ErrEmptyModel
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("earthmodel: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%d\n", len(m.Cells))
	for i := range m.Cells {
		c := &m.Cells[i]
		fmt.Fprintf(w, "%.9e %d\n", c.Thickness, c.Order())
		for t := 0; t < NumParamTypes; t++ {
			for j, v := range c.Coeff[t] {
				if j > 0 {
					fmt.Fprint(w, " ")
				}
				fmt.Fprintf(w, "%.9e", v)
			}
			fmt.Fprintln(w)
		}
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("earthmodel: write %s: %w", path, err)
	}
	return nil
}

// lineReader yields whitespace-split fields of successive non-empty,
// non-comment lines.
type lineReader struct {
	sc *bufio.Scanner
}

func newLineReader(f *os.File) *lineReader {
	return &lineReader{sc: bufio.NewScanner(f)}
}

func (r *lineReader) next() ([]string, error) {
	for r.sc.Scan() {
		line := strings.TrimSpace(r.sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.Fields(line), nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, fmt.Errorf("earthmodel: read: %w", err)
	}
	return nil, fmt.Errorf("%w: unexpected end of file", ErrBadFormat)
}

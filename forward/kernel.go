package forward

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Kernel is the on-disk part of a Linearized evaluator: base predictions,
// diagonal data covariance and the Jacobian, all computed externally at the
// reference model.
//
// File format: plain text, '#' comments and blank lines ignored. The first
// value line holds "nres nparam". Three blocks follow: nres base prediction
// values, nres data variance values, then nres Jacobian rows of nparam
// values each. Values may be split across lines freely.
type Kernel struct {
	BasePredictions []float64
	DataCov         []float64
	Jacobian        *mat.Dense
}

// LoadKernel reads a sensitivity-kernel file.
func LoadKernel(path string) (*Kernel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("forward: open %s: %w", path, err)
	}
	defer f.Close()

	tok := newTokenReader(f)

	nres, err := tok.nextInt()
	if err != nil {
		return nil, err
	}
	nparam, err := tok.nextInt()
	if err != nil {
		return nil, err
	}
	if nres < 1 || nparam < 1 {
		return nil, fmt.Errorf("%w: dimensions %d x %d", ErrBadKernelFormat, nres, nparam)
	}

	base, err := tok.nextFloats(nres)
	if err != nil {
		return nil, err
	}
	cov, err := tok.nextFloats(nres)
	if err != nil {
		return nil, err
	}
	raw, err := tok.nextFloats(nres * nparam)
	if err != nil {
		return nil, err
	}

	return &Kernel{
		BasePredictions: base,
		DataCov:         cov,
		Jacobian:        mat.NewDense(nres, nparam, raw),
	}, nil
}

// tokenReader yields whitespace-separated tokens, skipping '#' comments.
type tokenReader struct {
	sc  *bufio.Scanner
	buf []string
}

func newTokenReader(r io.Reader) *tokenReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &tokenReader{sc: sc}
}

// tokens returns the fields of the next non-empty, non-comment line.
func (t *tokenReader) tokens() ([]string, error) {
	for t.sc.Scan() {
		line := strings.TrimSpace(t.sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.Fields(line), nil
	}
	if err := t.sc.Err(); err != nil {
		return nil, fmt.Errorf("forward: read: %w", err)
	}
	return nil, fmt.Errorf("%w: unexpected end of file", ErrBadKernelFormat)
}

// pending buffers tokens of the current line between calls.
func (t *tokenReader) next() (string, error) {
	for len(t.buf) == 0 {
		fields, err := t.tokens()
		if err != nil {
			return "", err
		}
		t.buf = fields
	}
	s := t.buf[0]
	t.buf = t.buf[1:]
	return s, nil
}

func (t *tokenReader) nextInt() (int, error) {
	s, err := t.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: integer %q", ErrBadKernelFormat, s)
	}
	return v, nil
}

func (t *tokenReader) nextFloats(n int) ([]float64, error) {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		s, err := t.next()
		if err != nil {
			return nil, err
		}
		if out[i], err = strconv.ParseFloat(s, 64); err != nil {
			return nil, fmt.Errorf("%w: value %q", ErrBadKernelFormat, s)
		}
	}
	return out, nil
}

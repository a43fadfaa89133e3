package dispersion

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Data is one station pair's dispersion dataset: the raw measurement grid,
// the companion phase curve, the usable band indices and — once a model has
// been fit — the predicted values over the target band.
type Data struct {
	Freq  []float64
	Obs   []float64
	Sigma []float64
	Phase []float64
	Pred  []float64

	fmin, fmax  float64
	first, last int // inclusive target band
}

// Load reads a measurement file and records the desired frequency band.
// Samples are kept in full; the band only selects the target subrange. The
// band is clamped to the available samples by InitTarget.
func Load(path string, fmin, fmax float64) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dispersion: open %s: %w", path, err)
	}
	defer f.Close()

	d := &Data{fmin: fmin, fmax: fmax, first: -1, last: -1}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("%w: sample line %q", ErrBadFormat, line)
		}
		vals := make([]float64, len(fields))
		for i, s := range fields {
			if vals[i], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("%w: value %q", ErrBadFormat, s)
			}
		}
		sigma := 1.0
		if len(vals) == 3 {
			sigma = vals[2]
		}
		if n := len(d.Freq); n > 0 && vals[0] <= d.Freq[n-1] {
			return nil, ErrUnsortedFrequencies
		}
		d.Freq = append(d.Freq, vals[0])
		d.Obs = append(d.Obs, vals[1])
		d.Sigma = append(d.Sigma, sigma)
	}
	if err = sc.Err(); err != nil {
		return nil, fmt.Errorf("dispersion: read %s: %w", path, err)
	}
	if len(d.Freq) == 0 {
		return nil, ErrNoSamples
	}
	return d, nil
}

// LoadPhase reads the companion phase-curve file. Its frequency grid must
// match the measurement grid sample for sample.
func (d *Data) LoadPhase(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("dispersion: open %s: %w", path, err)
	}
	defer f.Close()

	phase := make([]float64, 0, len(d.Freq))
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return fmt.Errorf("%w: phase line %q", ErrBadFormat, line)
		}
		freq, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return fmt.Errorf("%w: value %q", ErrBadFormat, fields[0])
		}
		val, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("%w: value %q", ErrBadFormat, fields[1])
		}
		if len(phase) >= len(d.Freq) {
			return ErrFrequencyMismatch
		}
		if math.Abs(freq-d.Freq[len(phase)]) > 1e-9*math.Max(1, math.Abs(freq)) {
			return ErrFrequencyMismatch
		}
		phase = append(phase, val)
	}
	if err = sc.Err(); err != nil {
		return fmt.Errorf("dispersion: read %s: %w", path, err)
	}
	if len(phase) != len(d.Freq) {
		return ErrFrequencyMismatch
	}
	d.Phase = phase
	return nil
}

// InitTarget clamps the desired band to the available samples and fixes
// the target subrange. It returns the achieved band edges, which may be
// narrower than the desired ones. Returns ErrEmptyBand when no sample
// falls inside the desired band.
func (d *Data) InitTarget() (lo, hi float64, err error) {
	first, last := -1, -1
	for i, f := range d.Freq {
		if f < d.fmin || f > d.fmax {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return 0, 0, ErrEmptyBand
	}
	d.first, d.last = first, last
	return d.Freq[first], d.Freq[last], nil
}

// DesiredBand returns the band requested at load time.
func (d *Data) DesiredBand() (fmin, fmax float64) { return d.fmin, d.fmax }

// TargetLen returns the number of samples in the target band, zero before
// InitTarget.
func (d *Data) TargetLen() int {
	if d.first < 0 {
		return 0
	}
	return d.last - d.first + 1
}

// TargetFreqs returns the frequencies of the target band.
func (d *Data) TargetFreqs() []float64 { return d.targetSlice(d.Freq) }

// TargetObs returns the observed values of the target band.
func (d *Data) TargetObs() []float64 { return d.targetSlice(d.Obs) }

// TargetSigma returns the per-sample noise estimates of the target band.
func (d *Data) TargetSigma() []float64 { return d.targetSlice(d.Sigma) }

func (d *Data) targetSlice(src []float64) []float64 {
	if d.first < 0 {
		return nil
	}
	return append([]float64(nil), src[d.first:d.last+1]...)
}

// SetPredictions stores model-implied values for the target band. The
// slice length must equal TargetLen.
func (d *Data) SetPredictions(pred []float64) error {
	if len(pred) != d.TargetLen() || d.TargetLen() == 0 {
		return ErrLengthMismatch
	}
	d.Pred = append([]float64(nil), pred...)
	return nil
}

// SavePredictions writes "frequency observed predicted" lines for the
// target band.
func (d *Data) SavePredictions(path string) error {
	if len(d.Pred) != d.TargetLen() || d.TargetLen() == 0 {
		return ErrLengthMismatch
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dispersion: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := 0; i < d.TargetLen(); i++ {
		fmt.Fprintf(w, "%.9e %.9e %.9e\n", d.Freq[d.first+i], d.Obs[d.first+i], d.Pred[i])
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("dispersion: write %s: %w", path, err)
	}
	return nil
}

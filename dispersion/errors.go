package dispersion

import "errors"

var (
	// ErrBadFormat indicates a malformed measurement or phase file.
	ErrBadFormat = errors.New("dispersion: malformed dispersion file")
	// ErrNoSamples indicates a file without any measurement lines.
	ErrNoSamples = errors.New("dispersion: file holds no samples")
	// ErrUnsortedFrequencies indicates frequencies that are not strictly
	// increasing.
	ErrUnsortedFrequencies = errors.New("dispersion: frequencies must be strictly increasing")
	// ErrEmptyBand indicates no sample falls inside the desired band.
	ErrEmptyBand = errors.New("dispersion: no samples inside the desired frequency band")
	// ErrFrequencyMismatch indicates a phase curve on a different frequency
	// grid than the measurements.
	ErrFrequencyMismatch = errors.New("dispersion: phase curve frequency grid does not match measurements")
	// ErrLengthMismatch indicates predictions of the wrong length for the
	// target band.
	ErrLengthMismatch = errors.New("dispersion: prediction length does not match the target band")
)

package forward

import "errors"

var (
	// ErrDimensionMismatch indicates kernel, observation and model sizes
	// that do not agree.
	ErrDimensionMismatch = errors.New("forward: kernel, observation and model dimensions do not agree")
	// ErrBadDataCovariance indicates a non-positive data variance entry.
	ErrBadDataCovariance = errors.New("forward: data covariance entries must be strictly positive")
	// ErrBadKernelFormat indicates a malformed sensitivity-kernel file.
	ErrBadKernelFormat = errors.New("forward: malformed sensitivity-kernel file")
)

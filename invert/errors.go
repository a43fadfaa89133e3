package invert

import "errors"

var (
	// ErrBadOptions indicates an Options value that fails validation.
	ErrBadOptions = errors.New("invert: invalid options")
	// ErrDimensionMismatch indicates vectors, mask, covariances or Jacobian
	// whose sizes do not agree.
	ErrDimensionMismatch = errors.New("invert: dimension mismatch")
	// ErrSingularSystem indicates the regularized normal system could not be
	// factorized; the quasi-Newton strategy reports it instead of emitting
	// NaNs.
	ErrSingularSystem = errors.New("invert: regularized normal system is singular or not positive definite")
	// ErrBadDataCovariance indicates a non-positive data variance entry.
	ErrBadDataCovariance = errors.New("invert: data covariance entries must be strictly positive")
	// ErrBadGradient indicates a non-finite adjoint gradient entry.
	ErrBadGradient = errors.New("invert: gradient contains non-finite values")
	// ErrStartOutOfBounds indicates a starting model that violates the prior
	// bounds, which would make the inner validation retry loop unable to
	// terminate.
	ErrStartOutOfBounds = errors.New("invert: starting model violates prior bounds")
)

package earthmodel

import "errors"

var (
	// ErrEmptyModel indicates a model with no cells.
	ErrEmptyModel = errors.New("earthmodel: model must have at least one cell")
	// ErrBadOrder indicates a non-positive polynomial order.
	ErrBadOrder = errors.New("earthmodel: polynomial order must be at least 1")
	// ErrLengthMismatch indicates a parameter vector whose length does not
	// match the model's flattened layout.
	ErrLengthMismatch = errors.New("earthmodel: parameter vector length does not match model layout")
	// ErrBadFormat indicates a malformed layered-model file.
	ErrBadFormat = errors.New("earthmodel: malformed layered-model file")
)

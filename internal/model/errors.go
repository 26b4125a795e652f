package model

import "errors"

var (
	// ErrMissingData signals that a price or feature is not available at evaluation time.
	ErrMissingData = errors.New("missing data")
	// ErrInvalidData signals inputs that break the bar invariants.
	ErrInvalidData = errors.New("invalid data")
	// ErrInvalidConfig signals a configuration that must abort the run.
	ErrInvalidConfig = errors.New("invalid configuration")
)

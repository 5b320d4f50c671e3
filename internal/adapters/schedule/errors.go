package schedule

import "errors"

var (
	// ErrInvalidInterval is returned for a non-positive tick interval.
	ErrInvalidInterval = errors.New("tick interval must be positive")
)

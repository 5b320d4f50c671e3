package clock

import "errors"

// Sentinel errors for clock configuration.
var (
	ErrUnknownGranularity = errors.New("unknown clock granularity")
)

package eventlog

import "errors"

// Sentinel errors for the event log.
var (
	ErrUnknownTeam = errors.New("unknown team")
)

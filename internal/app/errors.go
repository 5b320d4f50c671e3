package service

import "errors"

// Sentinel errors returned by the service.
var (
	// ErrStopped is returned by clock operations after Stop.
	ErrStopped = errors.New("service stopped")
)

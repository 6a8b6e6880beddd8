package domain

import "errors"

var (
	// ErrValidation is returned for malformed or out-of-range requests.
	ErrValidation = errors.New("validation error")

	// ErrNotFound is returned for unknown jobs, pods or nodes.
	ErrNotFound = errors.New("not found")

	// ErrRemoteExecution is returned when a remote command exits non-zero or the transport fails.
	ErrRemoteExecution = errors.New("remote execution error")

	// ErrTimeout is returned when a bounded wait is exceeded.
	ErrTimeout = errors.New("timeout")

	// ErrInvalidState is returned when an operation is not permitted in the current state.
	ErrInvalidState = errors.New("invalid state")
)

// services/errors.go - Typed failures the handlers translate to HTTP statuses
package services

import "errors"

var (
	// Caller errors: the referenced entity is missing or inconsistent. No
	// state is changed.
	ErrRunNotFound        = errors.New("run not found")
	ErrCheckpointNotFound = errors.New("checkpoint not found")
	ErrMismatchedHunt     = errors.New("checkpoint does not belong to the run's hunt")

	// Validation: rejected before any read.
	ErrEmptyAnswer = errors.New("answer is required")

	// Business rules: rejected before the attempt is recorded, so capped or
	// out-of-range submissions never count.
	ErrRunClosed    = errors.New("run no longer accepts attempts")
	ErrAttemptLimit = errors.New("no attempts remaining")
	ErrOutOfRange   = errors.New("submission is outside the checkpoint area")
)

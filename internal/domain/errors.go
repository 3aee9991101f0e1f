package domain

import "errors"

var (
	// ErrInvalidArgument is returned when partition or request inputs are out of range
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPushNotFound is returned when no push matches a token and room
	ErrPushNotFound = errors.New("push not found")

	// ErrValidationFailed is returned when a status query is made by a non-creator
	// or outside the 7-day window. The two cases are deliberately not distinguished.
	ErrValidationFailed = errors.New("validation failed")

	// ErrShareExhausted is returned when a claim reaches storage with no unclaimed share left
	ErrShareExhausted = errors.New("no unclaimed share remains")
)

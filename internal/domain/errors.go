package domain

import "errors"

var (
	// ErrInvalidInput marks a malformed candidate. Nothing may be persisted.
	ErrInvalidInput = errors.New("invalid input")

	// ErrClassifierUnavailable means the AI layer produced no confidence.
	// It never reaches end users; scoring redistributes the AI weight instead.
	ErrClassifierUnavailable = errors.New("classifier unavailable")

	// ErrStoreUnavailable means a report store read or write failed.
	ErrStoreUnavailable = errors.New("report store unavailable")
)

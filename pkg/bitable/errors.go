package bitable

import "errors"

// Sentinel errors surfaced to the gateway layer. Callers distinguish
// "record does not exist" from transient failures via ErrRecordNotFound.
var (
	ErrNotConfigured     = errors.New("bitable: app credentials not configured")
	ErrAuthFailure       = errors.New("bitable: authentication failed")
	ErrWriteFailure      = errors.New("bitable: record write failed")
	ErrReadFailure       = errors.New("bitable: record read failed")
	ErrRecordNotFound    = errors.New("bitable: record not found")
	ErrMalformedResponse = errors.New("bitable: malformed response")
	ErrTimeout           = errors.New("bitable: request timed out")
)

// Package apperr defines error sentinels shared across the service.
package apperr

import "errors"

// ErrInvalidInput is returned when caller supplied input fails validation.
var ErrInvalidInput = errors.New("invalid input")

// ErrRequestFailed is returned when a call to the suppression list provider
// fails at the transport level or the provider responds with a non-2xx status.
var ErrRequestFailed = errors.New("request failed")

// ErrNotConfigured is returned when the provider API key is not available.
var ErrNotConfigured = errors.New("provider API key is not configured")

// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Configuration errors. These abort a job before any external call is made.
var (
	// ErrEmptyCatalog indicates the location catalog resolved to zero entries.
	ErrEmptyCatalog = errors.New("location catalog is empty")

	// ErrMissingCredentials indicates required store or API credentials are absent.
	ErrMissingCredentials = errors.New("missing credentials")
)

// Generation backend errors.
var (
	// ErrRateLimited indicates the backend rejected the call with a rate limit.
	// Calls failing with this class are retried within the same backend.
	ErrRateLimited = errors.New("rate limited")

	// ErrBadModel indicates the backend or model is invalid or deprecated.
	// Calls failing with this class skip retries and fall through immediately.
	ErrBadModel = errors.New("bad request or model unavailable")

	// ErrEmptyCompletion indicates the backend returned an empty or
	// sub-minimum-length completion.
	ErrEmptyCompletion = errors.New("empty or too short completion")

	// ErrAllTiersExhausted indicates every backend in a class's ranked list
	// failed.
	ErrAllTiersExhausted = errors.New("all generation backends exhausted")

	// ErrNoBackendsAvailable indicates no backend is configured for a class.
	ErrNoBackendsAvailable = errors.New("no generation backends available")
)

// Content safety errors.
var (
	// ErrUnsafeContent indicates the assembled content matched the denylist.
	ErrUnsafeContent = errors.New("content failed safety filter")
)

// Image pipeline errors. These degrade to the static fallback asset and
// never fail a job.
var (
	// ErrNoBaseImage indicates no base image could be acquired from any source.
	ErrNoBaseImage = errors.New("no base image available")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// README: Error taxonomy shared by all modules; handlers map these to HTTP status codes.
package types

import "errors"

var (
	// ErrValidation marks malformed or out-of-range input rejected before any network call.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a lookup that legitimately has no answer.
	ErrNotFound = errors.New("not found")
	// ErrUpstreamUnavailable marks a provider timeout or failure on a path without fallback.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

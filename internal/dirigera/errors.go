package dirigera

import "errors"

// Domain-specific errors for hub operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnauthorized is returned when the hub rejects the bearer token.
	ErrUnauthorized = errors.New("dirigera: unauthorized (check DIRIGERA_TOKEN)")

	// ErrRequestFailed is returned when a hub API call fails.
	// A failed call is distinct from an empty device list: callers must not
	// treat it as "no devices" or dedup state would be silently skewed.
	ErrRequestFailed = errors.New("dirigera: request failed")
)

package services

import "errors"

// Error taxonomy of the analysis pipeline. Callers branch with errors.Is.
var (
	// ErrUnavailable marks a transient failure: the analysis capability is
	// unreachable or the call timed out. Item submission degrades to a null
	// analysis instead of failing.
	ErrUnavailable = errors.New("analysis capability unavailable")

	// ErrMalformedOutput marks a response from the capability that contained
	// no valid JSON object or failed schema validation.
	ErrMalformedOutput = errors.New("malformed analysis output")

	// ErrInvalidArgument marks a caller-side contract violation, e.g. a merge
	// batch whose size is not exactly BatchWindowSize. Not recoverable.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrImportTransport marks an unreachable external comment source. Import
	// runs end early with partial progress instead of failing.
	ErrImportTransport = errors.New("external source unreachable")

	// ErrStore marks a persistence failure. Always surfaced to the caller,
	// never silently swallowed.
	ErrStore = errors.New("store failure")
)

package live

import "errors"

// Engine errors. Callers classify with errors.Is; wrapped causes carry the
// underlying store or provider failure.
var (
	// ErrOwnerOnly is returned when a non-owner invokes an owner-gated
	// operation (session lifecycle, plan generation).
	ErrOwnerOnly = errors.New("operation restricted to group owner")

	// ErrSessionCreate wraps failures to start a live session.
	ErrSessionCreate = errors.New("failed to start live session")

	// ErrSessionEnd wraps failures to end a live session.
	ErrSessionEnd = errors.New("failed to end live session")

	// ErrWriteCoalesce wraps failures to persist a coalesced document write.
	ErrWriteCoalesce = errors.New("failed to persist itinerary write")

	// ErrSyncFetch wraps failures to refresh session state from the store.
	ErrSyncFetch = errors.New("failed to fetch session state")

	// ErrGeneration wraps plan-generation failures, from the provider call
	// through payload coercion.
	ErrGeneration = errors.New("failed to generate trip plan")

	// ErrEngineClosed is returned by operations on a closed engine.
	ErrEngineClosed = errors.New("live engine closed")
)

package domain

import "errors"

// Failure taxonomy shared by the adapters and the orchestrator. All of
// these are recovered at the orchestrator boundary and surfaced as a
// user-visible status; none terminates the session.
var (
	// ErrEmptyInput rejects a blank place name before any network call.
	ErrEmptyInput = errors.New("empty place name")

	// ErrNotFound means the geocoder returned zero candidates.
	ErrNotFound = errors.New("place not found")

	// ErrNoRouteFound means the routing service found no drivable path.
	ErrNoRouteFound = errors.New("no route found")

	// ErrLookupFailed wraps transport or parse failures at any of the
	// external services. Distinct from ErrNotFound.
	ErrLookupFailed = errors.New("lookup failed")

	// ErrPersistenceDegraded means the history store could not durably
	// write; the operation continues in-memory for the session.
	ErrPersistenceDegraded = errors.New("persistence degraded")
)

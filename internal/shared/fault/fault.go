// Package fault defines the error taxonomy shared by the terminal core.
//
// Application services wrap their domain errors into one of these sentinels so
// adapters (HTTP, logging) can classify failures with errors.Is without
// knowing every domain error.
package fault

import "errors"

var (
	// ErrInvalidInput marks rejected boundary input (discount, admin form fields).
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidReference marks an id that is not present in the current mirror snapshot.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrRemoteUnavailable marks a failure of the external document store.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	// ErrAuthFailure marks a sign-in or admin PIN mismatch.
	ErrAuthFailure = errors.New("authentication failed")
)

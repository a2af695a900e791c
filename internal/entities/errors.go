// Package entities contains the payloads exchanged with the social API and
// the errors shared by the client and the development backend.
package entities

import "errors"

var (
	// ErrNotFound is returned when a resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument signals failed input validation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthorized signals a missing or rejected session token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden signals an authenticated caller without access.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict signals a duplicate or already applied change.
	ErrConflict = errors.New("conflict")
	// ErrNoNextPage is returned when a list has no further pages.
	ErrNoNextPage = errors.New("no next page")
	// ErrKeyMismatch signals an upload stored under a key other than the presigned one.
	ErrKeyMismatch = errors.New("upload key mismatch")
)

package domain

import "errors"

var (
	// ErrValidation covers empty or malformed input rejected before any backend call.
	ErrValidation = errors.New("invalid input")

	ErrDuplicateNumber    = errors.New("number already registered")
	ErrDuplicateChat      = errors.New("chat already exists")
	ErrContactNotFound    = errors.New("number not found")
	ErrNotParticipant     = errors.New("user is not a participant of the chat")
	ErrNotSignedIn        = errors.New("not signed in")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrBackend wraps failures surfaced by the auth, document or blob collaborators.
	ErrBackend = errors.New("backend failure")

	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("conflict")
)

// IsKnown reports whether err already carries one of the sync-layer sentinels.
func IsKnown(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrDuplicateNumber, ErrDuplicateChat, ErrContactNotFound,
		ErrNotParticipant, ErrNotSignedIn, ErrInvalidCredentials, ErrBackend,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

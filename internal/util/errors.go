package util

import "errors"

// NotFound and state-conflict errors are definitive failures: a desynced
// client must resynchronize, not retry. Business outcomes (wrong answer,
// timeup, inactivity) are never modeled as errors.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailRegistered  = errors.New("email already registered")
	ErrNameTaken        = errors.New("name already in use")
	ErrRunNotFound      = errors.New("quiz run not found")
	ErrQuestionNotFound = errors.New("question not found")

	ErrInvalidRunStatus  = errors.New("quiz run is not in a valid status for this operation")
	ErrQuestionMismatch  = errors.New("question does not match the current quiz item")
	ErrRunOwnerMismatch  = errors.New("quiz run does not belong to this user")
	ErrInvalidBelt       = errors.New("unknown belt")
	ErrInvalidOperation  = errors.New("unsupported operation")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidCredential = errors.New("invalid credentials")
)

// IsStateConflict reports whether err signals a desynchronized client.
func IsStateConflict(err error) bool {
	return errors.Is(err, ErrInvalidRunStatus) ||
		errors.Is(err, ErrQuestionMismatch) ||
		errors.Is(err, ErrRunOwnerMismatch)
}

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrRunNotFound) ||
		errors.Is(err, ErrQuestionNotFound)
}

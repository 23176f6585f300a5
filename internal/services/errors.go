package services

import (
	"errors"

	"moodwall/internal/session"
)

var (
	// ErrPermissionDenied is returned when the store rejects a write for the
	// current actor. The text is shown to end users as-is.
	ErrPermissionDenied = errors.New("permission denied: sign in or use guest mode")
	ErrCheckinFailed    = errors.New("could not save check-in")
	ErrInvalidCheckin   = errors.New("mood value must be between 1 and 10 and an emoji is required")
	ErrPostNotFound     = errors.New("mood wall post not found")
	ErrUserNotFound     = errors.New("user not found")

	ErrInvalidSignup      = errors.New("a valid email and a password of at least 6 characters are required")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrGuestConverted     = session.ErrGuestConverted
)

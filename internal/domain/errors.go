package domain

import "errors"

var (
	ErrSecretNotFound   = errors.New("secret not found")
	ErrNoSession        = errors.New("not logged in")
	ErrNoRefreshToken   = errors.New("no refresh token stored")
	ErrSessionEnded     = errors.New("session ended")
	ErrNotConnected     = errors.New("realtime channel not connected")
	ErrInvalidTheme     = errors.New("invalid theme")
	ErrInvalidRole      = errors.New("invalid role")
	ErrInvalidTaskState = errors.New("invalid task status")
)

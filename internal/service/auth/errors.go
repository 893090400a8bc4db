package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrStaffNotFound      = errors.New("staff account not found")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

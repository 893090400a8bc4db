package pasetotoken

import (
	"errors"
	"fmt"
)

// ErrTokenNotYetValid is returned when a token's nbf claim is in the future.
var ErrTokenNotYetValid = errors.New("token not yet valid")

// ErrConfig reports a key or manager misconfiguration at startup.
type ErrConfig struct{ Msg string }

func (e ErrConfig) Error() string { return "paseto config error: " + e.Msg }

type ErrInvalidToken struct{ Err error }

func (e ErrInvalidToken) Error() string { return fmt.Sprintf("invalid token: %v", e.Err) }
func (e ErrInvalidToken) Unwrap() error { return e.Err }

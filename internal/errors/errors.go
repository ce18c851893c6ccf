package errors

import (
	"errors"
)

var (
	ErrInvalidEmail           = errors.New("invalid email")
	ErrEmailAlreadyInUse      = errors.New("an account with this email already exists")
	ErrNoSuchUser             = errors.New("no user exists with this email")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrTokenExpired           = errors.New("token expired")
	ErrTokenInvalid           = errors.New("token invalid")
	ErrRefreshVersionMismatch = errors.New("refresh token version mismatch")
)

package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingSecret      = errors.New("missing jwt secret")
	ErrUnauthorized       = errors.New("unauthorized")
)

package service

import "errors"

var (
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("access token required")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidFormat      = errors.New("invalid file format")
	ErrNotFound           = errors.New("not found")
	ErrTooManyStreams     = errors.New("too many open streams")
)

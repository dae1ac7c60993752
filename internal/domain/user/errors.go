package user

import "errors"

var (
	ErrInvalidID = errors.New("user: invalid id")

	ErrUsernameEmpty          = errors.New("user: username empty")
	ErrUsernameTooShort       = errors.New("user: username too short")
	ErrUsernameTooLong        = errors.New("user: username too long")
	ErrUsernameInvalidChars   = errors.New("user: username has invalid characters")
	ErrEmailInvalidFormat     = errors.New("user: email invalid format")
	ErrUsernameAlreadyExists  = errors.New("user: username already exists")
	ErrEmailAlreadyExists     = errors.New("user: email already exists")
	ErrNotFound               = errors.New("user: not found")
	ErrInvalidCredentials     = errors.New("user: invalid credentials")
	ErrDatabase               = errors.New("user: database error")
)

package channel

import "errors"

var (
	ErrInvalidID = errors.New("channel: invalid id")

	ErrNameEmpty   = errors.New("channel: name empty")
	ErrNameTooLong = errors.New("channel: name too long")

	ErrNotFound         = errors.New("channel: not found")
	ErrNameAlreadyExists = errors.New("channel: name already exists")
	ErrNotMember        = errors.New("channel: user is not a member")
	ErrDatabase         = errors.New("channel: database error")
	ErrUserServiceError = errors.New("channel: user service error")
)

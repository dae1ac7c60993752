package message

import "errors"

var (
	ErrInvalidID      = errors.New("message: invalid id")
	ErrContentEmpty   = errors.New("message: content empty")
	ErrContentTooLong = errors.New("message: content too long")
	ErrChannelNotFound = errors.New("message: channel not found")
	ErrDatabase       = errors.New("message: database error")
)

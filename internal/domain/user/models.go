package user

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ID is the opaque 128-bit identifier for a user. It is a distinct type
// from channel.ID and message.ID so they can never be silently swapped.
type ID struct{ uuid.UUID }

func NewID() ID {
	return ID{uuid.New()}
}

func ParseID(s string) (ID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return ID{id}, nil
}

func (id ID) String() string { return id.UUID.String() }

// Username is a validated 3-32 code point handle, alphanumeric plus _ and -.
type Username string

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func NewUsername(raw string) (Username, error) {
	n := len([]rune(raw))
	switch {
	case n == 0:
		return "", ErrUsernameEmpty
	case n < 3:
		return "", ErrUsernameTooShort
	case n > 32:
		return "", ErrUsernameTooLong
	case !usernamePattern.MatchString(raw):
		return "", ErrUsernameInvalidChars
	}
	return Username(raw), nil
}

func (u Username) String() string { return string(u) }

// EmailAddress is a validated RFC-shaped address. Full RFC 5322 grammar is
// overkill for a value object; this checks the shape a real mail address
// has (local-part@domain-with-a-dot) and rejects obvious garbage.
type EmailAddress string

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func NewEmailAddress(raw string) (EmailAddress, error) {
	if !emailPattern.MatchString(raw) {
		return "", ErrEmailInvalidFormat
	}
	return EmailAddress(strings.ToLower(raw)), nil
}

func (e EmailAddress) String() string { return string(e) }

// User is the identity-service-owned account record.
type User struct {
	ID           ID
	Username     Username
	Email        EmailAddress
	PasswordHash string
	CreatedAt    time.Time
}

// CreateCommand carries validated input for User creation; the password is
// still plaintext here — hashing happens in the service, not the value
// object layer.
type CreateCommand struct {
	Username Username
	Email    EmailAddress
	Password string
}

// UpdatePatch carries optional field updates; nil means "leave unchanged".
type UpdatePatch struct {
	Username *Username
	Email    *EmailAddress
	Password *string
}

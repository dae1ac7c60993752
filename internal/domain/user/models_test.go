package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUsername(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"too short", "ab", ErrUsernameTooShort},
		{"too long", strings.Repeat("a", 33), ErrUsernameTooLong},
		{"invalid chars", "a b", ErrUsernameInvalidChars},
		{"empty", "", ErrUsernameEmpty},
		{"valid", "alice_99", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewUsername(tc.raw)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestNewEmailAddress(t *testing.T) {
	_, err := NewEmailAddress("not-an-email")
	assert.ErrorIs(t, err, ErrEmailInvalidFormat)

	e, err := NewEmailAddress("Nicola@Example.com")
	assert.NoError(t, err)
	assert.Equal(t, "nicola@example.com", e.String())
}

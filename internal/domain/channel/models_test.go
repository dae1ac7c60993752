package channel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewName(t *testing.T) {
	_, err := NewName("")
	assert.ErrorIs(t, err, ErrNameEmpty)

	_, err = NewName(strings.Repeat("a", 101))
	assert.ErrorIs(t, err, ErrNameTooLong)

	n, err := NewName("general")
	assert.NoError(t, err)
	assert.Equal(t, "general", n.String())
}

func TestPublicChannelAccessors(t *testing.T) {
	c := Public{NameValue: "general"}
	var ch Channel = c
	assert.Equal(t, TypePublic, ch.Kind())
	name, ok := ch.Name()
	assert.True(t, ok)
	assert.Equal(t, Name("general"), name)
}

func TestDirectChannelHasNoName(t *testing.T) {
	d := Direct{}
	var ch Channel = d
	_, ok := ch.Name()
	assert.False(t, ok)
}

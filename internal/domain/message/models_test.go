package message

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContent(t *testing.T) {
	_, err := NewContent("")
	assert.ErrorIs(t, err, ErrContentEmpty)

	_, err = NewContent(strings.Repeat("a", 4001))
	assert.ErrorIs(t, err, ErrContentTooLong)

	c, err := NewContent(strings.Repeat("a", 4000))
	require.NoError(t, err)
	assert.Len(t, c.String(), 4000)
}

func TestIDGeneratorMonotonic(t *testing.T) {
	g := NewIDGenerator()
	now := time.Now()
	a := g.New(now)
	b := g.New(now)
	assert.True(t, a.String() < b.String(), "ids minted in the same instant must still sort in mint order")
}

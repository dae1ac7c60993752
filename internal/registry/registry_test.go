package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chatgrid/chatgrid/internal/domain/channel"
	"github.com/chatgrid/chatgrid/internal/domain/user"
)

func TestAddRemoveBookkeeping(t *testing.T) {
	r := New()
	ch := channel.NewID()
	u := user.NewID()
	c1 := NewConnectionID()
	out := make(chan []byte, 1)

	r.Add(c1, u, ch, out)
	assert.Equal(t, 1, r.ConnectionsInChannel(ch))

	r.Remove(c1)
	assert.Equal(t, 0, r.ConnectionsInChannel(ch))
}

func TestBroadcastAfterAllRemovalsDeliversNothing(t *testing.T) {
	r := New()
	ch := channel.NewID()
	u := user.NewID()
	c1 := NewConnectionID()
	out := make(chan []byte, 1)

	r.Add(c1, u, ch, out)
	r.Remove(c1)

	result := r.Broadcast(ch, []byte("hi"))
	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 0, result.Failed)
}

func TestBroadcastNonBlockingOnFullBuffer(t *testing.T) {
	r := New()
	ch := channel.NewID()
	u := user.NewID()
	c1 := NewConnectionID()
	out := make(chan []byte, 1)
	out <- []byte("already full")

	r.Add(c1, u, ch, out)
	result := r.Broadcast(ch, []byte("hi"))
	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 1, result.Failed)
}

func TestBroadcastOnlyReachesTargetChannel(t *testing.T) {
	r := New()
	chA := channel.NewID()
	chB := channel.NewID()
	u := user.NewID()
	outA := make(chan []byte, 1)
	outB := make(chan []byte, 1)

	r.Add(NewConnectionID(), u, chA, outA)
	r.Add(NewConnectionID(), u, chB, outB)

	r.Broadcast(chA, []byte("hi"))
	assert.Len(t, outA, 1)
	assert.Len(t, outB, 0)
}

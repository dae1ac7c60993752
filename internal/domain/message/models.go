package message

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/chatgrid/chatgrid/internal/domain/channel"
	"github.com/chatgrid/chatgrid/internal/domain/user"
)

// ID is a 128-bit time-ordered identifier; its lexical order matches
// creation order, which is what lets the message store use it directly as
// a clustering key instead of carrying a separate timestamp sort.
//
// The 80-bit entropy component is read from crypto/rand (see IDGenerator)
// rather than fixed, so two instances minting ids in the same millisecond
// collide only with negligible probability.
type ID struct{ ulid.ULID }

func (id ID) String() string { return id.ULID.String() }

func ParseID(s string) (ID, error) {
	u, err := ulid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return ID{u}, nil
}

// IDUpperBound returns the largest possible ULID string stamped at t: the
// maximal entropy suffix after t's timestamp component. On a text
// clustering key, "id <= IDUpperBound(t)" selects every id stamped at or
// before t's millisecond, regardless of what entropy the id carried.
func IDUpperBound(t time.Time) string {
	var id ulid.ULID
	_ = id.SetTime(ulid.Timestamp(t))
	for i := range id[ulid.TimestampSize:] {
		id[ulid.TimestampSize+i] = 0xFF
	}
	return id.String()
}

// IDGenerator mints monotonically-increasing, time-ordered message ids.
// One instance is created per process at startup; it is safe for
// concurrent use.
type IDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *IDGenerator) New(at time.Time) ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ID{ulid.MustNew(ulid.Timestamp(at), g.entropy)}
}

// Content is a validated 1-4000 byte message body.
type Content string

func NewContent(raw string) (Content, error) {
	switch {
	case len(raw) == 0:
		return "", ErrContentEmpty
	case len(raw) > 4000:
		return "", ErrContentTooLong
	}
	return Content(raw), nil
}

func (c Content) String() string { return string(c) }

// Message is an immutable, append-only chat message.
type Message struct {
	ID        ID
	ChannelID channel.ID
	UserID    user.ID
	Content   Content
	Timestamp time.Time
}

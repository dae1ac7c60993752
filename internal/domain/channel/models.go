package channel

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chatgrid/chatgrid/internal/domain/user"
)

// ID is the opaque 128-bit identifier for a channel.
type ID struct{ uuid.UUID }

func NewID() ID { return ID{uuid.New()} }

func ParseID(s string) (ID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return ID{id}, nil
}

func (id ID) String() string { return id.UUID.String() }

// Name is a validated 1-100 byte channel name.
type Name string

func NewName(raw string) (Name, error) {
	switch {
	case len(raw) == 0:
		return "", ErrNameEmpty
	case len(raw) > 100:
		return "", ErrNameTooLong
	}
	return Name(raw), nil
}

func (n Name) String() string { return string(n) }

// Type tags which variant of the Channel sum type a value is.
type Type string

const (
	TypePublic  Type = "public"
	TypePrivate Type = "private"
	TypeDirect  Type = "direct"
)

// Channel is the shared accessor surface every variant satisfies. Reach
// variant-specific fields (Members, Participants) by a type switch on the
// concrete type after checking Kind().
type Channel interface {
	ID() ID
	Kind() Type
	CreatedBy() user.ID
	CreatedAt() time.Time
	// Name and Description return (value, ok) since Direct channels carry
	// neither.
	Name() (Name, bool)
	Description() (string, bool)
}

type Public struct {
	IDValue        ID
	NameValue      Name
	DescValue      string
	HasDesc        bool
	CreatedByValue user.ID
	CreatedAtValue time.Time
}

func (p Public) ID() ID                     { return p.IDValue }
func (p Public) Kind() Type                 { return TypePublic }
func (p Public) CreatedBy() user.ID         { return p.CreatedByValue }
func (p Public) CreatedAt() time.Time       { return p.CreatedAtValue }
func (p Public) Name() (Name, bool)         { return p.NameValue, true }
func (p Public) Description() (string, bool) { return p.DescValue, p.HasDesc }

type Private struct {
	IDValue        ID
	NameValue      Name
	DescValue      string
	HasDesc        bool
	CreatedByValue user.ID
	CreatedAtValue time.Time
	Members        []user.ID
}

func (p Private) ID() ID                     { return p.IDValue }
func (p Private) Kind() Type                 { return TypePrivate }
func (p Private) CreatedBy() user.ID         { return p.CreatedByValue }
func (p Private) CreatedAt() time.Time       { return p.CreatedAtValue }
func (p Private) Name() (Name, bool)         { return p.NameValue, true }
func (p Private) Description() (string, bool) { return p.DescValue, p.HasDesc }

// HasMember reports whether user is among the channel's membership.
func (p Private) HasMember(id user.ID) bool {
	for _, m := range p.Members {
		if m == id {
			return true
		}
	}
	return false
}

type Direct struct {
	IDValue        ID
	CreatedByValue user.ID
	CreatedAtValue time.Time
	Participants   [2]user.ID
}

func (d Direct) ID() ID                      { return d.IDValue }
func (d Direct) Kind() Type                  { return TypeDirect }
func (d Direct) CreatedBy() user.ID          { return d.CreatedByValue }
func (d Direct) CreatedAt() time.Time        { return d.CreatedAtValue }
func (d Direct) Name() (Name, bool)          { return "", false }
func (d Direct) Description() (string, bool) { return "", false }

func (d Direct) HasParticipant(id user.ID) bool {
	return d.Participants[0] == id || d.Participants[1] == id
}

// CreateCommand is the tagged union accepted by the channel service's
// Create operation.
type CreateCommand struct {
	Kind          Type
	Name          Name
	Description   string
	HasDesc       bool
	Members       []user.ID // Private only
	ParticipantID user.ID   // Direct only: the other participant
}

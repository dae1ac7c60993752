package user

import "time"

// These are pure domain events — no serialization tags. The wire envelope
// that rides the event bus lives in internal/events and is built from
// these by an explicit converter, so the broker's JSON shape never leaks
// into the domain.

type CreatedEvent struct {
	UserID    ID
	Username  Username
	Email     EmailAddress
	CreatedAt time.Time
}

type UpdatedEvent struct {
	UserID    ID
	Username  Username
	Email     EmailAddress
	UpdatedAt time.Time
}

type DeletedEvent struct {
	UserID    ID
	DeletedAt time.Time
}

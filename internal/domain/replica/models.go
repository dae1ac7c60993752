// Package replica is the chat-service-local read model of user identity,
// rebuilt entirely from the user-events topic so read-path enrichment
// (attaching a username to a message) never blocks on a remote call to the
// identity service.
package replica

import (
	"context"
	"time"

	"github.com/chatgrid/chatgrid/internal/domain/user"
)

// User is one row of the projection. It is rebuildable from the event
// stream at any time; the identity service remains the authoritative
// source.
type User struct {
	ID        user.ID
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
	SyncedAt  time.Time
}

// Store is the persistence capability the replica consumer depends on.
// All three handlers must be safe under redelivery.
type Store interface {
	// Upsert inserts or updates a row. If preserveCreatedAt is true and a
	// row already exists, the existing created_at is kept (the
	// UserUpdated case); otherwise created_at is stamped fresh (the
	// UserCreated case, or an UserUpdated arriving with no prior row).
	// inserted reports whether no prior row existed, so callers can log
	// the no-prior-row case.
	Upsert(ctx context.Context, u User, preserveCreatedAt bool) (inserted bool, err error)
	Delete(ctx context.Context, id user.ID) error
	FindByID(ctx context.Context, id user.ID) (User, error)
}

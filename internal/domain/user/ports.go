package user

import "context"

// Store is the persistence capability the user service depends on.
// Adapters (e.g. a pgx-backed Postgres store) implement this so the
// service is unit-testable against a fake.
type Store interface {
	Create(ctx context.Context, u User) error
	FindByID(ctx context.Context, id ID) (User, error)
	FindByUsername(ctx context.Context, username Username) (User, error)
	FindMany(ctx context.Context, ids []ID) ([]User, error)
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id ID) error
}

// EventPublisher publishes user lifecycle events to the bus.
type EventPublisher interface {
	PublishUserCreated(ctx context.Context, evt CreatedEvent) error
	PublishUserUpdated(ctx context.Context, evt UpdatedEvent) error
	PublishUserDeleted(ctx context.Context, evt DeletedEvent) error
}

package channel

import (
	"context"

	"github.com/chatgrid/chatgrid/internal/domain/user"
)

// Store is the persistence capability the channel service depends on.
type Store interface {
	Create(ctx context.Context, ch Channel) error
	FindByID(ctx context.Context, id ID) (Channel, error)
	FindPublic(ctx context.Context) ([]Channel, error)
	FindForUser(ctx context.Context, userID user.ID) ([]Channel, error)
	Delete(ctx context.Context, id ID) error
	// RemoveUserEverywhere deletes userID's channel_members rows and every
	// direct channel userID participates in — the UserDeleted cascade
	// cleanup.
	RemoveUserEverywhere(ctx context.Context, userID user.ID) error
}

// EventPublisher publishes channel lifecycle events to the bus.
type EventPublisher interface {
	PublishChannelCreated(ctx context.Context, evt CreatedEvent) error
	PublishUserJoinedChannel(ctx context.Context, evt UserJoinedEvent) error
	PublishUserLeftChannel(ctx context.Context, evt UserLeftEvent) error
	PublishChannelDeleted(ctx context.Context, evt DeletedEvent) error
}

package message

import (
	"context"
	"time"

	"github.com/chatgrid/chatgrid/internal/domain/channel"
)

// Store is the wide-column persistence capability the message service
// depends on. Messages are append-only: there is deliberately no Update.
type Store interface {
	Create(ctx context.Context, m Message) error
	FindByChannel(ctx context.Context, channelID channel.ID, limit int, before *time.Time) ([]Message, error)
}

// EventPublisher publishes MessageSent to the channel-sharded event bus.
type EventPublisher interface {
	PublishMessageSent(ctx context.Context, evt SentEvent) error
}

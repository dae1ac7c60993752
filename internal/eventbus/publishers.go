package eventbus

import (
	"context"

	"github.com/chatgrid/chatgrid/internal/domain/channel"
	"github.com/chatgrid/chatgrid/internal/domain/message"
	"github.com/chatgrid/chatgrid/internal/domain/user"
	"github.com/chatgrid/chatgrid/internal/events"
)

// ChatEventPublisher adapts Producer to the channel.EventPublisher and
// message.EventPublisher ports, routing every event through the shard
// router so all producers in the cluster agree on which shard owns a
// channel.
type ChatEventPublisher struct {
	producer *Producer
	router   *events.ShardRouter
}

func NewChatEventPublisher(producer *Producer, router *events.ShardRouter) *ChatEventPublisher {
	return &ChatEventPublisher{producer: producer, router: router}
}

func (p *ChatEventPublisher) PublishMessageSent(ctx context.Context, evt message.SentEvent) error {
	topic := p.router.ShardFor(evt.ChannelID)
	return p.producer.Publish(ctx, topic, evt.MessageID.String(), events.NewMessageSentEnvelope(evt))
}

func (p *ChatEventPublisher) PublishChannelCreated(ctx context.Context, evt channel.CreatedEvent) error {
	topic := p.router.ShardFor(evt.ChannelID)
	return p.producer.Publish(ctx, topic, evt.ChannelID.String(), events.NewChannelCreatedEnvelope(evt))
}

func (p *ChatEventPublisher) PublishUserJoinedChannel(ctx context.Context, evt channel.UserJoinedEvent) error {
	topic := p.router.ShardFor(evt.ChannelID)
	return p.producer.Publish(ctx, topic, evt.ChannelID.String(), events.NewUserJoinedChannelEnvelope(evt))
}

func (p *ChatEventPublisher) PublishUserLeftChannel(ctx context.Context, evt channel.UserLeftEvent) error {
	topic := p.router.ShardFor(evt.ChannelID)
	return p.producer.Publish(ctx, topic, evt.ChannelID.String(), events.NewUserLeftChannelEnvelope(evt))
}

func (p *ChatEventPublisher) PublishChannelDeleted(ctx context.Context, evt channel.DeletedEvent) error {
	// Channel deletion has no channel-scoped consumer interest beyond this
	// instance's own store; still published for future subscribers per
	// spec §4.3 item 3 ("reserved for future").
	topic := p.router.ShardFor(evt.ChannelID)
	return p.producer.Publish(ctx, topic, evt.ChannelID.String(), events.NewChannelDeletedEnvelope(evt))
}

// UserEventPublisher adapts Producer to user.EventPublisher, publishing to
// the single user-events topic keyed by user id so per-user event order
// is preserved.
type UserEventPublisher struct {
	producer *Producer
	topic    string
}

func NewUserEventPublisher(producer *Producer, topic string) *UserEventPublisher {
	return &UserEventPublisher{producer: producer, topic: topic}
}

func (p *UserEventPublisher) PublishUserCreated(ctx context.Context, evt user.CreatedEvent) error {
	return p.producer.Publish(ctx, p.topic, evt.UserID.String(), events.NewUserCreatedEnvelope(evt))
}

func (p *UserEventPublisher) PublishUserUpdated(ctx context.Context, evt user.UpdatedEvent) error {
	return p.producer.Publish(ctx, p.topic, evt.UserID.String(), events.NewUserUpdatedEnvelope(evt))
}

func (p *UserEventPublisher) PublishUserDeleted(ctx context.Context, evt user.DeletedEvent) error {
	return p.producer.Publish(ctx, p.topic, evt.UserID.String(), events.NewUserDeletedEnvelope(evt))
}

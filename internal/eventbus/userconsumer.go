package eventbus

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/chatgrid/chatgrid/internal/domain/replica"
	"github.com/chatgrid/chatgrid/internal/domain/user"
	"github.com/chatgrid/chatgrid/internal/events"
)

// UserReplicaConsumerConfig configures the chat-service-internal consumer
// group that keeps the local user replica warm.
type UserReplicaConsumerConfig struct {
	Brokers       []string
	ConsumerGroup string
	Topic         string
	Logger        zerolog.Logger
	ReplicaStore  replica.Store
	// RemoveUserFromChannels, if set, is called on UserDeleted (cmd/chat
	// wires it to the channel store's RemoveUserEverywhere) — the cascade
	// cleanup of membership references beyond the replica delete alone.
	RemoveUserFromChannels func(ctx context.Context, id user.ID) error
}

// UserReplicaConsumer subscribes to the single user-events topic with
// auto.offset.reset=earliest: a consumer group with no committed offsets
// replays the topic from the start, warming the replica from the full
// history. Serving reads is not gated on that replay.
type UserReplicaConsumer struct {
	client                 *kgo.Client
	logger                 zerolog.Logger
	store                  replica.Store
	removeUserFromChannels func(ctx context.Context, id user.ID) error
}

func NewUserReplicaConsumer(cfg UserReplicaConsumerConfig) (*UserReplicaConsumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.ConsumerGroup),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		return nil, err
	}
	return &UserReplicaConsumer{
		client:                 client,
		logger:                 cfg.Logger,
		store:                  cfg.ReplicaStore,
		removeUserFromChannels: cfg.RemoveUserFromChannels,
	}, nil
}

func (c *UserReplicaConsumer) Run(ctx context.Context) {
	backoff := 100 * time.Millisecond
	const maxBackoff = 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		fetches := c.client.PollFetches(ctx)
		if ctx.Err() != nil {
			return
		}

		if errs := fetches.Errors(); len(errs) > 0 {
			for _, e := range errs {
				c.logger.Error().Err(e.Err).Str("topic", e.Topic).Msg("user replica consumer: broker error")
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = 100 * time.Millisecond

		fetches.EachRecord(func(record *kgo.Record) {
			c.handleRecord(ctx, record)
		})
	}
}

func (c *UserReplicaConsumer) handleRecord(ctx context.Context, record *kgo.Record) {
	var envelope events.UserEventMessage
	if err := unmarshalRecord(record.Value, &envelope); err != nil {
		c.logger.Warn().Err(err).Msg("user replica consumer: skipping malformed record")
		return
	}

	userID, err := user.ParseID(envelope.UserID)
	if err != nil {
		c.logger.Warn().Err(err).Str("user_id", envelope.UserID).Msg("user replica consumer: skipping bad user id")
		return
	}

	switch envelope.EventType {
	case events.EventUserCreated:
		row := replica.User{ID: userID, Username: envelope.Username, CreatedAt: envelope.Timestamp, UpdatedAt: envelope.Timestamp, SyncedAt: time.Now()}
		if _, err := c.store.Upsert(ctx, row, false); err != nil {
			c.logger.Error().Err(err).Str("user_id", envelope.UserID).Msg("user replica consumer: upsert on created failed")
		}

	case events.EventUserUpdated:
		// CreatedAt is only used if no prior row exists: the usual case
		// preserves whatever the row already has.
		row := replica.User{ID: userID, Username: envelope.Username, CreatedAt: time.Now(), UpdatedAt: envelope.Timestamp, SyncedAt: time.Now()}
		inserted, err := c.store.Upsert(ctx, row, true)
		if err != nil {
			c.logger.Error().Err(err).Str("user_id", envelope.UserID).Msg("user replica consumer: upsert on updated failed")
			break
		}
		if inserted {
			c.logger.Warn().Str("user_id", envelope.UserID).Msg("user replica consumer: UserUpdated arrived with no prior row, stamping created_at fresh")
		}

	case events.EventUserDeleted:
		if err := c.store.Delete(ctx, userID); err != nil {
			c.logger.Warn().Err(err).Str("user_id", envelope.UserID).Msg("user replica consumer: replica delete failed, continuing")
		}
		if c.removeUserFromChannels != nil {
			if err := c.removeUserFromChannels(ctx, userID); err != nil {
				c.logger.Error().Err(err).Str("user_id", envelope.UserID).Msg("user replica consumer: channel membership cascade failed")
			}
		}

	default:
		c.logger.Debug().Str("event_type", string(envelope.EventType)).Msg("user replica consumer: ignoring non-user event type")
	}
}

func (c *UserReplicaConsumer) Close() {
	c.client.Close()
}

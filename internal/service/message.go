package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatgrid/chatgrid/internal/domain/channel"
	"github.com/chatgrid/chatgrid/internal/domain/message"
	"github.com/chatgrid/chatgrid/internal/domain/user"
)

const defaultHistoryLimit = 50

// MessageService coordinates the critical write path: look up the
// channel, persist the message, then publish a best-effort fan-out event.
type MessageService struct {
	channelStore channel.Store
	store        message.Store
	publisher    message.EventPublisher
	ids          *message.IDGenerator
	logger       zerolog.Logger
}

func NewMessageService(channelStore channel.Store, store message.Store, publisher message.EventPublisher, ids *message.IDGenerator, logger zerolog.Logger) *MessageService {
	return &MessageService{channelStore: channelStore, store: store, publisher: publisher, ids: ids, logger: logger}
}

// Send is the write path: persist first (the durability commit point),
// then publish. A publish failure is logged and does not fail the call —
// the message is safely in the store and retrievable by history fetch
// even if no instance broadcasts it live.
func (s *MessageService) Send(ctx context.Context, channelID channel.ID, userID user.ID, content message.Content) (message.Message, error) {
	if _, err := s.channelStore.FindByID(ctx, channelID); err != nil {
		if errors.Is(err, channel.ErrNotFound) {
			return message.Message{}, message.ErrChannelNotFound
		}
		return message.Message{}, fmt.Errorf("message: looking up channel: %w", err)
	}

	m := message.Message{
		ID:        s.ids.New(time.Now()),
		ChannelID: channelID,
		UserID:    userID,
		Content:   content,
		Timestamp: time.Now(),
	}

	if err := s.store.Create(ctx, m); err != nil {
		return message.Message{}, fmt.Errorf("%w: %v", message.ErrDatabase, err)
	}

	if err := s.publisher.PublishMessageSent(ctx, message.NewSentEvent(m)); err != nil {
		s.logger.Error().Err(err).Str("message_id", m.ID.String()).Str("channel_id", channelID.String()).
			Msg("failed to publish message_sent, message is durably stored")
	}

	return m, nil
}

// History returns messages newest-first, at most limit items (defaulting
// to 50), strictly older than before if provided.
func (s *MessageService) History(ctx context.Context, channelID channel.ID, limit int, before *time.Time) ([]message.Message, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.store.FindByChannel(ctx, channelID, limit, before)
}

package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chatgrid/chatgrid/internal/domain/channel"
	"github.com/chatgrid/chatgrid/internal/domain/message"
	"github.com/chatgrid/chatgrid/internal/domain/user"
)

// EventType discriminates the envelope union on the wire.
type EventType string

const (
	EventMessageSent       EventType = "message_sent"
	EventChannelCreated    EventType = "channel_created"
	EventUserJoinedChannel EventType = "user_joined_channel"
	EventUserLeftChannel   EventType = "user_left_channel"
	EventChannelDeleted    EventType = "channel_deleted"
	EventUserCreated       EventType = "user_created"
	EventUserUpdated       EventType = "user_updated"
	EventUserDeleted       EventType = "user_deleted"
)

// ChatEventMessage is the envelope published on the chat.messages.<i>
// shards. Only one payload group is populated per EventType; the others
// are zero-valued and omitted from JSON.
type ChatEventMessage struct {
	EventType EventType  `json:"event_type"`
	EventID   string     `json:"event_id"`
	MessageID string     `json:"message_id,omitempty"`
	ChannelID string     `json:"channel_id"`
	UserID    string     `json:"user_id,omitempty"`
	Content   string     `json:"content,omitempty"`
	Name      string     `json:"name,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

func NewMessageSentEnvelope(evt message.SentEvent) ChatEventMessage {
	return ChatEventMessage{
		EventType: EventMessageSent,
		EventID:   uuid.NewString(),
		MessageID: evt.MessageID.String(),
		ChannelID: evt.ChannelID.String(),
		UserID:    evt.UserID.String(),
		Content:   evt.Content.String(),
		Timestamp: evt.Timestamp,
	}
}

func NewChannelCreatedEnvelope(evt channel.CreatedEvent) ChatEventMessage {
	return ChatEventMessage{
		EventType: EventChannelCreated,
		EventID:   uuid.NewString(),
		ChannelID: evt.ChannelID.String(),
		UserID:    evt.CreatedBy.String(),
		Name:      evt.Name.String(),
		Timestamp: evt.CreatedAt,
	}
}

func NewUserJoinedChannelEnvelope(evt channel.UserJoinedEvent) ChatEventMessage {
	return ChatEventMessage{
		EventType: EventUserJoinedChannel,
		EventID:   uuid.NewString(),
		ChannelID: evt.ChannelID.String(),
		UserID:    evt.UserID.String(),
		Timestamp: evt.JoinedAt,
	}
}

func NewUserLeftChannelEnvelope(evt channel.UserLeftEvent) ChatEventMessage {
	return ChatEventMessage{
		EventType: EventUserLeftChannel,
		EventID:   uuid.NewString(),
		ChannelID: evt.ChannelID.String(),
		UserID:    evt.UserID.String(),
		Timestamp: evt.LeftAt,
	}
}

func NewChannelDeletedEnvelope(evt channel.DeletedEvent) ChatEventMessage {
	return ChatEventMessage{
		EventType: EventChannelDeleted,
		EventID:   uuid.NewString(),
		ChannelID: evt.ChannelID.String(),
		Timestamp: evt.DeletedAt,
	}
}

// UserEventMessage is the envelope published on the single user-events
// topic.
type UserEventMessage struct {
	EventType EventType `json:"event_type"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewUserCreatedEnvelope(evt user.CreatedEvent) UserEventMessage {
	return UserEventMessage{
		EventType: EventUserCreated,
		EventID:   uuid.NewString(),
		UserID:    evt.UserID.String(),
		Username:  evt.Username.String(),
		Email:     evt.Email.String(),
		Timestamp: evt.CreatedAt,
	}
}

func NewUserUpdatedEnvelope(evt user.UpdatedEvent) UserEventMessage {
	return UserEventMessage{
		EventType: EventUserUpdated,
		EventID:   uuid.NewString(),
		UserID:    evt.UserID.String(),
		Username:  evt.Username.String(),
		Email:     evt.Email.String(),
		Timestamp: evt.UpdatedAt,
	}
}

func NewUserDeletedEnvelope(evt user.DeletedEvent) UserEventMessage {
	return UserEventMessage{
		EventType: EventUserDeleted,
		EventID:   uuid.NewString(),
		UserID:    evt.UserID.String(),
		Timestamp: evt.DeletedAt,
	}
}

// PeekEventType reads just the discriminator out of a raw envelope, used
// by consumers to dispatch before fully unmarshaling.
func PeekEventType(raw []byte) (EventType, error) {
	var probe struct {
		EventType EventType `json:"event_type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", fmt.Errorf("events: parsing envelope: %w", err)
	}
	return probe.EventType, nil
}

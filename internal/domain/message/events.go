package message

import (
	"time"

	"github.com/chatgrid/chatgrid/internal/domain/channel"
	"github.com/chatgrid/chatgrid/internal/domain/user"
)

type SentEvent struct {
	MessageID ID
	ChannelID channel.ID
	UserID    user.ID
	Content   Content
	Timestamp time.Time
}

func NewSentEvent(m Message) SentEvent {
	return SentEvent{
		MessageID: m.ID,
		ChannelID: m.ChannelID,
		UserID:    m.UserID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
}

package channel

import (
	"time"

	"github.com/chatgrid/chatgrid/internal/domain/user"
)

type CreatedEvent struct {
	ChannelID ID
	Kind      Type
	Name      Name
	CreatedBy user.ID
	CreatedAt time.Time
}

type UserJoinedEvent struct {
	ChannelID ID
	UserID    user.ID
	JoinedAt  time.Time
}

type UserLeftEvent struct {
	ChannelID ID
	UserID    user.ID
	LeftAt    time.Time
}

type DeletedEvent struct {
	ChannelID ID
	DeletedAt time.Time
}

// Package service hosts the stateless application services that sit
// between the transport layer and the storage/event-bus ports.
package service

import (
	"context"
	"time"

	"github.com/chatgrid/chatgrid/internal/domain/channel"
	"github.com/chatgrid/chatgrid/internal/domain/user"
)

// ChannelService is a stateless facade over the channel store: it mints
// ids and timestamps, delegates persistence, and fans out lifecycle
// events. It never itself decides who may read a channel.
type ChannelService struct {
	store     channel.Store
	publisher channel.EventPublisher
}

func NewChannelService(store channel.Store, publisher channel.EventPublisher) *ChannelService {
	return &ChannelService{store: store, publisher: publisher}
}

// Create dispatches on cmd.Kind, builds the matching variant with a fresh
// id and the current instant, persists it, and publishes ChannelCreated.
func (s *ChannelService) Create(ctx context.Context, cmd channel.CreateCommand, createdBy user.ID) (channel.Channel, error) {
	id := channel.NewID()
	now := time.Now()

	var ch channel.Channel
	switch cmd.Kind {
	case channel.TypePublic:
		ch = channel.Public{
			IDValue: id, NameValue: cmd.Name, DescValue: cmd.Description, HasDesc: cmd.HasDesc,
			CreatedByValue: createdBy, CreatedAtValue: now,
		}
	case channel.TypePrivate:
		members := append([]user.ID{createdBy}, cmd.Members...)
		ch = channel.Private{
			IDValue: id, NameValue: cmd.Name, DescValue: cmd.Description, HasDesc: cmd.HasDesc,
			CreatedByValue: createdBy, CreatedAtValue: now, Members: dedupeUserIDs(members),
		}
	case channel.TypeDirect:
		ch = channel.Direct{
			IDValue: id, CreatedByValue: createdBy, CreatedAtValue: now,
			Participants: [2]user.ID{createdBy, cmd.ParticipantID},
		}
	}

	if err := s.store.Create(ctx, ch); err != nil {
		return nil, err
	}

	name, _ := ch.Name()
	if err := s.publisher.PublishChannelCreated(ctx, channel.CreatedEvent{
		ChannelID: ch.ID(), Kind: ch.Kind(), Name: name, CreatedBy: createdBy, CreatedAt: now,
	}); err != nil {
		// publish failures are logged by the publisher itself and never
		// surfaced; the store write above already committed.
		_ = err
	}

	return ch, nil
}

func dedupeUserIDs(ids []user.ID) []user.ID {
	seen := make(map[user.ID]struct{}, len(ids))
	out := make([]user.ID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *ChannelService) Get(ctx context.Context, id channel.ID) (channel.Channel, error) {
	return s.store.FindByID(ctx, id)
}

// ListPublic returns every public channel, newest first.
func (s *ChannelService) ListPublic(ctx context.Context) ([]channel.Channel, error) {
	return s.store.FindPublic(ctx)
}

// ListForUser returns channels the user created, is a member of, or
// participates in, newest first.
func (s *ChannelService) ListForUser(ctx context.Context, userID user.ID) ([]channel.Channel, error) {
	return s.store.FindForUser(ctx, userID)
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/chatgrid/chatgrid/internal/domain/channel"
	"github.com/chatgrid/chatgrid/internal/domain/message"
	"github.com/chatgrid/chatgrid/internal/domain/user"
)

var errPublishFailed = errors.New("service: fake publish failure")

// Concrete in-memory fakes, not generated mocks: simpler to read for the
// handful of ports these tests exercise.

type fakeChannelStore struct {
	channels map[channel.ID]channel.Channel
}

func newFakeChannelStore() *fakeChannelStore {
	return &fakeChannelStore{channels: map[channel.ID]channel.Channel{}}
}

func (f *fakeChannelStore) Create(_ context.Context, ch channel.Channel) error {
	f.channels[ch.ID()] = ch
	return nil
}

func (f *fakeChannelStore) FindByID(_ context.Context, id channel.ID) (channel.Channel, error) {
	ch, ok := f.channels[id]
	if !ok {
		return nil, channel.ErrNotFound
	}
	return ch, nil
}

func (f *fakeChannelStore) FindPublic(_ context.Context) ([]channel.Channel, error) {
	var out []channel.Channel
	for _, ch := range f.channels {
		if ch.Kind() == channel.TypePublic {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (f *fakeChannelStore) FindForUser(_ context.Context, userID user.ID) ([]channel.Channel, error) {
	var out []channel.Channel
	for _, ch := range f.channels {
		if ch.CreatedBy() == userID {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (f *fakeChannelStore) Delete(_ context.Context, id channel.ID) error {
	delete(f.channels, id)
	return nil
}

func (f *fakeChannelStore) RemoveUserEverywhere(_ context.Context, _ user.ID) error { return nil }

type fakeChannelPublisher struct{ created []channel.CreatedEvent }

func (f *fakeChannelPublisher) PublishChannelCreated(_ context.Context, evt channel.CreatedEvent) error {
	f.created = append(f.created, evt)
	return nil
}
func (f *fakeChannelPublisher) PublishUserJoinedChannel(context.Context, channel.UserJoinedEvent) error {
	return nil
}
func (f *fakeChannelPublisher) PublishUserLeftChannel(context.Context, channel.UserLeftEvent) error {
	return nil
}
func (f *fakeChannelPublisher) PublishChannelDeleted(context.Context, channel.DeletedEvent) error {
	return nil
}

type fakeMessageStore struct {
	byChannel map[channel.ID][]message.Message
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{byChannel: map[channel.ID][]message.Message{}}
}

func (f *fakeMessageStore) Create(_ context.Context, m message.Message) error {
	f.byChannel[m.ChannelID] = append(f.byChannel[m.ChannelID], m)
	return nil
}

func (f *fakeMessageStore) FindByChannel(_ context.Context, channelID channel.ID, limit int, before *time.Time) ([]message.Message, error) {
	all := f.byChannel[channelID]
	var filtered []message.Message
	for i := len(all) - 1; i >= 0; i-- {
		m := all[i]
		if before != nil && !m.Timestamp.Before(*before) {
			continue
		}
		filtered = append(filtered, m)
		if len(filtered) == limit {
			break
		}
	}
	return filtered, nil
}

type fakeMessagePublisher struct {
	sent    []message.SentEvent
	failing bool
}

func (f *fakeMessagePublisher) PublishMessageSent(_ context.Context, evt message.SentEvent) error {
	if f.failing {
		return errPublishFailed
	}
	f.sent = append(f.sent, evt)
	return nil
}

type fakeUserStore struct {
	byID       map[user.ID]user.User
	byUsername map[user.Username]user.ID
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: map[user.ID]user.User{}, byUsername: map[user.Username]user.ID{}}
}

func (f *fakeUserStore) Create(_ context.Context, u user.User) error {
	f.byID[u.ID] = u
	f.byUsername[u.Username] = u.ID
	return nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id user.ID) (user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) FindByUsername(_ context.Context, name user.Username) (user.User, error) {
	id, ok := f.byUsername[name]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return f.byID[id], nil
}

func (f *fakeUserStore) FindMany(_ context.Context, ids []user.ID) ([]user.User, error) {
	var out []user.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) Update(_ context.Context, u user.User) error {
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id user.ID) error {
	delete(f.byID, id)
	return nil
}

type fakeUserPublisher struct{}

func (fakeUserPublisher) PublishUserCreated(context.Context, user.CreatedEvent) error { return nil }
func (fakeUserPublisher) PublishUserUpdated(context.Context, user.UpdatedEvent) error { return nil }
func (fakeUserPublisher) PublishUserDeleted(context.Context, user.DeletedEvent) error { return nil }

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatgrid/chatgrid/internal/domain/channel"
	"github.com/chatgrid/chatgrid/internal/domain/user"
)

func TestCreatePublicChannel(t *testing.T) {
	store := newFakeChannelStore()
	pub := &fakeChannelPublisher{}
	svc := NewChannelService(store, pub)
	creator := user.NewID()

	name, err := channel.NewName("general")
	require.NoError(t, err)

	ch, err := svc.Create(context.Background(), channel.CreateCommand{Kind: channel.TypePublic, Name: name}, creator)
	require.NoError(t, err)
	assert.Equal(t, channel.TypePublic, ch.Kind())
	assert.Equal(t, creator, ch.CreatedBy())
	assert.Len(t, pub.created, 1)
}

func TestCreatePrivateChannelIncludesCreatorInMembers(t *testing.T) {
	store := newFakeChannelStore()
	pub := &fakeChannelPublisher{}
	svc := NewChannelService(store, pub)
	creator := user.NewID()
	other := user.NewID()

	name, err := channel.NewName("secret-room")
	require.NoError(t, err)

	ch, err := svc.Create(context.Background(), channel.CreateCommand{Kind: channel.TypePrivate, Name: name, Members: []user.ID{other}}, creator)
	require.NoError(t, err)

	private, ok := ch.(channel.Private)
	require.True(t, ok)
	assert.True(t, private.HasMember(creator))
	assert.True(t, private.HasMember(other))
}

func TestCreateDirectChannelHasTwoParticipants(t *testing.T) {
	store := newFakeChannelStore()
	pub := &fakeChannelPublisher{}
	svc := NewChannelService(store, pub)
	creator := user.NewID()
	other := user.NewID()

	ch, err := svc.Create(context.Background(), channel.CreateCommand{Kind: channel.TypeDirect, ParticipantID: other}, creator)
	require.NoError(t, err)

	direct, ok := ch.(channel.Direct)
	require.True(t, ok)
	assert.True(t, direct.HasParticipant(creator))
	assert.True(t, direct.HasParticipant(other))
}

func TestGetNotFound(t *testing.T) {
	store := newFakeChannelStore()
	svc := NewChannelService(store, &fakeChannelPublisher{})

	_, err := svc.Get(context.Background(), channel.NewID())
	assert.ErrorIs(t, err, channel.ErrNotFound)
}

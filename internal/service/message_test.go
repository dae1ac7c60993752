package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatgrid/chatgrid/internal/domain/channel"
	"github.com/chatgrid/chatgrid/internal/domain/message"
	"github.com/chatgrid/chatgrid/internal/domain/user"
)

func newMessageService(channelStore *fakeChannelStore, msgPub *fakeMessagePublisher) (*MessageService, *fakeMessageStore) {
	msgStore := newFakeMessageStore()
	svc := NewMessageService(channelStore, msgStore, msgPub, message.NewIDGenerator(), zerolog.Nop())
	return svc, msgStore
}

func seedPublicChannel(store *fakeChannelStore, createdBy user.ID) channel.ID {
	ch := channel.Public{IDValue: channel.NewID(), NameValue: "general", CreatedByValue: createdBy}
	_ = store.Create(context.Background(), ch)
	return ch.ID()
}

func TestSendMessageSuccess(t *testing.T) {
	channelStore := newFakeChannelStore()
	userID := user.NewID()
	channelID := seedPublicChannel(channelStore, userID)
	pub := &fakeMessagePublisher{}
	svc, _ := newMessageService(channelStore, pub)

	content, err := message.NewContent("hello")
	require.NoError(t, err)

	m, err := svc.Send(context.Background(), channelID, userID, content)
	require.NoError(t, err)
	assert.Equal(t, channelID, m.ChannelID)
	assert.Equal(t, userID, m.UserID)
	assert.Len(t, pub.sent, 1)
}

func TestSendMessageChannelNotFound(t *testing.T) {
	channelStore := newFakeChannelStore()
	pub := &fakeMessagePublisher{}
	svc, _ := newMessageService(channelStore, pub)

	content, err := message.NewContent("hello")
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), channel.NewID(), user.NewID(), content)
	assert.ErrorIs(t, err, message.ErrChannelNotFound)
}

func TestSendMessageSucceedsEvenIfPublishFails(t *testing.T) {
	channelStore := newFakeChannelStore()
	userID := user.NewID()
	channelID := seedPublicChannel(channelStore, userID)
	pub := &fakeMessagePublisher{failing: true}
	svc, _ := newMessageService(channelStore, pub)

	content, err := message.NewContent("hello")
	require.NoError(t, err)

	m, err := svc.Send(context.Background(), channelID, userID, content)
	require.NoError(t, err, "durable write succeeded, publish failure must not surface")
	assert.NotEmpty(t, m.ID.String())
	assert.Empty(t, pub.sent)
}

func TestHistoryDefaultLimit(t *testing.T) {
	channelStore := newFakeChannelStore()
	userID := user.NewID()
	channelID := seedPublicChannel(channelStore, userID)
	pub := &fakeMessagePublisher{}
	svc, _ := newMessageService(channelStore, pub)

	for i := 0; i < 5; i++ {
		content, err := message.NewContent("msg")
		require.NoError(t, err)
		_, err = svc.Send(context.Background(), channelID, userID, content)
		require.NoError(t, err)
	}

	history, err := svc.History(context.Background(), channelID, 0, nil)
	require.NoError(t, err)
	assert.Len(t, history, 5)
}

func TestHistoryWithLimitAndBefore(t *testing.T) {
	channelStore := newFakeChannelStore()
	userID := user.NewID()
	channelID := seedPublicChannel(channelStore, userID)
	pub := &fakeMessagePublisher{}
	svc, _ := newMessageService(channelStore, pub)

	var sent []message.Message
	for i := 0; i < 5; i++ {
		content, err := message.NewContent("msg")
		require.NoError(t, err)
		m, err := svc.Send(context.Background(), channelID, userID, content)
		require.NoError(t, err)
		sent = append(sent, m)
	}

	page, err := svc.History(context.Background(), channelID, 3, nil)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, sent[4].ID, page[0].ID)

	before := sent[2].Timestamp
	page2, err := svc.History(context.Background(), channelID, 10, &before)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(page2), 2)
}

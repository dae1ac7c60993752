// Package cassandra adapts the message domain's wide-column storage onto
// gocql. Messages are append-only and partitioned by channel, matching
// the wide-column store spec §3 calls for.
package cassandra

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"github.com/chatgrid/chatgrid/internal/domain/channel"
	"github.com/chatgrid/chatgrid/internal/domain/message"
	"github.com/chatgrid/chatgrid/internal/domain/user"
)

// NewSession builds a gocql session against hosts/keyspace with quorum
// consistency, a reasonable default for a chat history store that must
// survive a single node loss without losing durability guarantees.
func NewSession(hosts []string, keyspace string) (*gocql.Session, error) {
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("cassandra: creating session: %w", err)
	}
	return session, nil
}

// MessageStore is the gocql-backed message.Store adapter.
type MessageStore struct {
	session *gocql.Session
}

func NewMessageStore(session *gocql.Session) *MessageStore {
	return &MessageStore{session: session}
}

func (s *MessageStore) Create(ctx context.Context, m message.Message) error {
	err := s.session.Query(
		`INSERT INTO messages (channel_id, id, user_id, content, sent_at) VALUES (?, ?, ?, ?, ?)`,
		m.ChannelID.UUID.String(), m.ID.String(), m.UserID.UUID.String(), m.Content.String(), m.Timestamp,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("%w: %v", message.ErrDatabase, err)
	}
	return nil
}

// FindByChannel returns up to limit messages newest-first. When before is
// set, only messages whose id was stamped in an earlier millisecond than
// before are returned — pagination by ULID comparison, since id's lexical
// order already matches time order.
func (s *MessageStore) FindByChannel(ctx context.Context, channelID channel.ID, limit int, before *time.Time) ([]message.Message, error) {
	var iter *gocql.Iter
	if before != nil {
		cursor := message.IDUpperBound(before.Add(-time.Millisecond))
		iter = s.session.Query(
			`SELECT id, user_id, content, sent_at FROM messages WHERE channel_id = ? AND id <= ? LIMIT ?`,
			channelID.UUID.String(), cursor, limit,
		).WithContext(ctx).Iter()
	} else {
		iter = s.session.Query(
			`SELECT id, user_id, content, sent_at FROM messages WHERE channel_id = ? LIMIT ?`,
			channelID.UUID.String(), limit,
		).WithContext(ctx).Iter()
	}

	var out []message.Message
	var idStr, userIDStr, content string
	var sentAt time.Time
	for iter.Scan(&idStr, &userIDStr, &content, &sentAt) {
		id, err := message.ParseID(idStr)
		if err != nil {
			continue
		}
		uid, err := user.ParseID(userIDStr)
		if err != nil {
			continue
		}
		out = append(out, message.Message{
			ID: id, ChannelID: channelID, UserID: uid,
			Content: message.Content(content), Timestamp: sentAt,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", message.ErrDatabase, err)
	}
	return out, nil
}

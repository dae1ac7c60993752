package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chatgrid/chatgrid/internal/domain/channel"
	"github.com/chatgrid/chatgrid/internal/domain/user"
)

// ChannelStore is the pgx-backed channel.Store adapter. Public and
// Private channels share the channels/channel_members tables; Direct
// channels use the separate direct_channel_participants table since a DM
// always has exactly two sides and no name.
type ChannelStore struct {
	pool *pgxpool.Pool
}

func NewChannelStore(pool *pgxpool.Pool) *ChannelStore {
	return &ChannelStore{pool: pool}
}

func (s *ChannelStore) Create(ctx context.Context, ch channel.Channel) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", channel.ErrDatabase, err)
	}
	defer tx.Rollback(ctx)

	switch v := ch.(type) {
	case channel.Public:
		if err := insertChannelRow(ctx, tx, v.IDValue, channel.TypePublic, &v.NameValue, v.DescValue, v.HasDesc, v.CreatedByValue, v.CreatedAtValue); err != nil {
			return err
		}
	case channel.Private:
		if err := insertChannelRow(ctx, tx, v.IDValue, channel.TypePrivate, &v.NameValue, v.DescValue, v.HasDesc, v.CreatedByValue, v.CreatedAtValue); err != nil {
			return err
		}
		for _, member := range v.Members {
			if _, err := tx.Exec(ctx, `INSERT INTO channel_members (channel_id, user_id) VALUES ($1, $2)`, v.IDValue.UUID, member.UUID); err != nil {
				return fmt.Errorf("%w: %v", channel.ErrDatabase, err)
			}
		}
	case channel.Direct:
		if err := insertChannelRow(ctx, tx, v.IDValue, channel.TypeDirect, nil, "", false, v.CreatedByValue, v.CreatedAtValue); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO direct_channel_participants (channel_id, user_a, user_b) VALUES ($1, $2, $3)`,
			v.IDValue.UUID, v.Participants[0].UUID, v.Participants[1].UUID); err != nil {
			return fmt.Errorf("%w: %v", channel.ErrDatabase, err)
		}
	default:
		return fmt.Errorf("%w: unknown channel variant %T", channel.ErrDatabase, ch)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", channel.ErrDatabase, err)
	}
	return nil
}

func insertChannelRow(ctx context.Context, tx pgx.Tx, id channel.ID, kind channel.Type, name *channel.Name, desc string, hasDesc bool, createdBy user.ID, createdAt time.Time) error {
	var nameVal any
	if name != nil {
		nameVal = name.String()
	}
	var descVal any
	if hasDesc {
		descVal = desc
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO channels (id, kind, name, description, created_by, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id.UUID, string(kind), nameVal, descVal, createdBy.UUID, createdAt,
	)
	if isUniqueViolation(err) {
		return channel.ErrNameAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("%w: %v", channel.ErrDatabase, err)
	}
	return nil
}

func (s *ChannelStore) FindByID(ctx context.Context, id channel.ID) (channel.Channel, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, kind, name, description, created_by, created_at FROM channels WHERE id = $1`, id.UUID)
	return s.scanChannel(ctx, row)
}

func (s *ChannelStore) FindPublic(ctx context.Context) ([]channel.Channel, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, kind, name, description, created_by, created_at FROM channels WHERE kind = 'public' ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrDatabase, err)
	}
	defer rows.Close()
	return s.scanChannels(ctx, rows)
}

func (s *ChannelStore) FindForUser(ctx context.Context, userID user.ID) ([]channel.Channel, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.kind, c.name, c.description, c.created_by, c.created_at
		FROM channels c
		LEFT JOIN channel_members cm ON cm.channel_id = c.id
		LEFT JOIN direct_channel_participants dp ON dp.channel_id = c.id
		WHERE c.created_by = $1 OR cm.user_id = $1 OR dp.user_a = $1 OR dp.user_b = $1
		GROUP BY c.id
		ORDER BY c.created_at DESC`, userID.UUID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrDatabase, err)
	}
	defer rows.Close()
	return s.scanChannels(ctx, rows)
}

func (s *ChannelStore) Delete(ctx context.Context, id channel.ID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM channels WHERE id = $1`, id.UUID)
	if err != nil {
		return fmt.Errorf("%w: %v", channel.ErrDatabase, err)
	}
	if tag.RowsAffected() == 0 {
		return channel.ErrNotFound
	}
	return nil
}

// RemoveUserEverywhere strips userID from channel_members and from any
// direct_channel_participants row. Direct channels can't have a
// participant removed without ceasing to be a DM, so the direct channel
// itself is deleted; its messages in the message store are left in place.
func (s *ChannelStore) RemoveUserEverywhere(ctx context.Context, userID user.ID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", channel.ErrDatabase, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM channel_members WHERE user_id = $1`, userID.UUID); err != nil {
		return fmt.Errorf("%w: %v", channel.ErrDatabase, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM channels WHERE id IN (
		SELECT channel_id FROM direct_channel_participants WHERE user_a = $1 OR user_b = $1)`, userID.UUID); err != nil {
		return fmt.Errorf("%w: %v", channel.ErrDatabase, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM direct_channel_participants WHERE user_a = $1 OR user_b = $1`, userID.UUID); err != nil {
		return fmt.Errorf("%w: %v", channel.ErrDatabase, err)
	}

	return tx.Commit(ctx)
}

func (s *ChannelStore) scanChannel(ctx context.Context, r row) (channel.Channel, error) {
	var id, createdBy channel.ID
	var kind string
	var name, desc *string
	var createdAt time.Time
	if err := r.Scan(&id.UUID, &kind, &name, &desc, &createdBy.UUID, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, channel.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", channel.ErrDatabase, err)
	}
	return s.buildChannel(ctx, id, channel.Type(kind), name, desc, user.ID{UUID: createdBy.UUID}, createdAt)
}

func (s *ChannelStore) scanChannels(ctx context.Context, rows pgx.Rows) ([]channel.Channel, error) {
	var out []channel.Channel
	for rows.Next() {
		var id, createdBy channel.ID
		var kind string
		var name, desc *string
		var createdAt time.Time
		if err := rows.Scan(&id.UUID, &kind, &name, &desc, &createdBy.UUID, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: %v", channel.ErrDatabase, err)
		}
		ch, err := s.buildChannel(ctx, id, channel.Type(kind), name, desc, user.ID{UUID: createdBy.UUID}, createdAt)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// buildChannel assembles the concrete variant matching kind, querying the
// side table (channel_members or direct_channel_participants) as needed.
func (s *ChannelStore) buildChannel(ctx context.Context, id channel.ID, kind channel.Type, name, desc *string, createdBy user.ID, createdAt time.Time) (channel.Channel, error) {
	var nameVal channel.Name
	if name != nil {
		nameVal = channel.Name(*name)
	}
	hasDesc := desc != nil
	descVal := ""
	if hasDesc {
		descVal = *desc
	}

	switch kind {
	case channel.TypePublic:
		return channel.Public{
			IDValue: id, NameValue: nameVal, DescValue: descVal, HasDesc: hasDesc,
			CreatedByValue: createdBy, CreatedAtValue: createdAt,
		}, nil

	case channel.TypePrivate:
		members, err := s.findMembers(ctx, id)
		if err != nil {
			return nil, err
		}
		return channel.Private{
			IDValue: id, NameValue: nameVal, DescValue: descVal, HasDesc: hasDesc,
			CreatedByValue: createdBy, CreatedAtValue: createdAt, Members: members,
		}, nil

	case channel.TypeDirect:
		a, b, err := s.findParticipants(ctx, id)
		if err != nil {
			return nil, err
		}
		return channel.Direct{
			IDValue: id, CreatedByValue: createdBy, CreatedAtValue: createdAt,
			Participants: [2]user.ID{a, b},
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown channel kind %q", channel.ErrDatabase, kind)
	}
}

func (s *ChannelStore) findMembers(ctx context.Context, id channel.ID) ([]user.ID, error) {
	rows, err := s.pool.Query(ctx, `SELECT user_id FROM channel_members WHERE channel_id = $1`, id.UUID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrDatabase, err)
	}
	defer rows.Close()

	var members []user.ID
	for rows.Next() {
		var u user.ID
		if err := rows.Scan(&u.UUID); err != nil {
			return nil, fmt.Errorf("%w: %v", channel.ErrDatabase, err)
		}
		members = append(members, u)
	}
	return members, rows.Err()
}

func (s *ChannelStore) findParticipants(ctx context.Context, id channel.ID) (user.ID, user.ID, error) {
	var a, b user.ID
	err := s.pool.QueryRow(ctx, `SELECT user_a, user_b FROM direct_channel_participants WHERE channel_id = $1`, id.UUID).
		Scan(&a.UUID, &b.UUID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.ID{}, user.ID{}, channel.ErrNotFound
		}
		return user.ID{}, user.ID{}, fmt.Errorf("%w: %v", channel.ErrDatabase, err)
	}
	return a, b, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chatgrid/chatgrid/internal/domain/replica"
	"github.com/chatgrid/chatgrid/internal/domain/user"
)

// ReplicaStore is the chat service's local projection of user identity,
// rebuilt from the user-events topic by the user replica consumer.
type ReplicaStore struct {
	pool *pgxpool.Pool
}

func NewReplicaStore(pool *pgxpool.Pool) *ReplicaStore {
	return &ReplicaStore{pool: pool}
}

// Upsert inserts or updates a row. When preserveCreatedAt is true and a
// row already exists, created_at is left untouched; when no row exists yet,
// the caller-supplied created_at is used regardless (the UserUpdated case
// stamps it fresh, since there is nothing to preserve). inserted reports
// whether this call found no prior row.
func (s *ReplicaStore) Upsert(ctx context.Context, u replica.User, preserveCreatedAt bool) (bool, error) {
	var inserted bool

	if preserveCreatedAt {
		err := s.pool.QueryRow(ctx, `
			INSERT INTO user_replica (id, username, created_at, updated_at, synced_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET username = $2, updated_at = $4, synced_at = $5
			RETURNING (xmax = 0)`,
			u.ID.UUID, u.Username, u.CreatedAt, u.UpdatedAt, u.SyncedAt,
		).Scan(&inserted)
		if err != nil {
			return false, fmt.Errorf("replica: upsert: %w", err)
		}
		return inserted, nil
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO user_replica (id, username, created_at, updated_at, synced_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET username = $2, created_at = $3, updated_at = $4, synced_at = $5
		RETURNING (xmax = 0)`,
		u.ID.UUID, u.Username, u.CreatedAt, u.UpdatedAt, u.SyncedAt,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("replica: upsert: %w", err)
	}
	return inserted, nil
}

func (s *ReplicaStore) Delete(ctx context.Context, id user.ID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM user_replica WHERE id = $1`, id.UUID); err != nil {
		return fmt.Errorf("replica: delete: %w", err)
	}
	return nil
}

func (s *ReplicaStore) FindByID(ctx context.Context, id user.ID) (replica.User, error) {
	var out replica.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, created_at, updated_at, synced_at FROM user_replica WHERE id = $1`, id.UUID,
	).Scan(&out.ID.UUID, &out.Username, &out.CreatedAt, &out.UpdatedAt, &out.SyncedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return replica.User{}, replica.ErrNotFound
		}
		return replica.User{}, fmt.Errorf("replica: find by id: %w", err)
	}
	return out, nil
}

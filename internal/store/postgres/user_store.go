package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chatgrid/chatgrid/internal/domain/user"
)

// UserStore is the identity service's pgx-backed user.Store adapter.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) Create(ctx context.Context, u user.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID.UUID, u.Username.String(), u.Email.String(), u.PasswordHash, u.CreatedAt,
	)
	if isUniqueViolation(err) {
		return userConflictError(err)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", user.ErrDatabase, err)
	}
	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id user.ID) (user.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`, id.UUID)
	return scanUser(row)
}

func (s *UserStore) FindByUsername(ctx context.Context, username user.Username) (user.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1`, username.String())
	return scanUser(row)
}

func (s *UserStore) FindMany(ctx context.Context, ids []user.ID) ([]user.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]any, len(ids))
	for i, id := range ids {
		raw[i] = id.UUID
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = ANY($1)`, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", user.ErrDatabase, err)
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		u, err := scanUserRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *UserStore) Update(ctx context.Context, u user.User) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET username = $2, email = $3, password_hash = $4 WHERE id = $1`,
		u.ID.UUID, u.Username.String(), u.Email.String(), u.PasswordHash,
	)
	if isUniqueViolation(err) {
		return userConflictError(err)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", user.ErrDatabase, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id user.ID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.UUID)
	if err != nil {
		return fmt.Errorf("%w: %v", user.ErrDatabase, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

type row interface {
	Scan(dest ...any) error
}

func scanUser(r row) (user.User, error) {
	var u user.User
	var username, email string
	if err := r.Scan(&u.ID.UUID, &username, &email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("%w: %v", user.ErrDatabase, err)
	}
	u.Username = user.Username(username)
	u.Email = user.EmailAddress(email)
	return u, nil
}

func scanUserRows(rows pgx.Rows) (user.User, error) {
	return scanUser(rows)
}

func isUniqueViolation(err error) bool {
	return err != nil && pgErrorCode(err) == "23505"
}

// userConflictError maps a unique-violation on the users table to the
// specific sentinel the colliding column identifies, so an email collision
// is never misreported as a username collision or vice versa.
func userConflictError(err error) error {
	if pgConstraintName(err) == "users_email_key" {
		return user.ErrEmailAlreadyExists
	}
	return user.ErrUsernameAlreadyExists
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chatgrid/chatgrid/internal/credential"
	"github.com/chatgrid/chatgrid/internal/domain/user"
)

// UserService is the identity service's application layer: account
// creation, authentication, and profile maintenance.
type UserService struct {
	store      user.Store
	publisher  user.EventPublisher
	hasher     *credential.PasswordHasher
	jwt        *credential.JWTHandler
	tokenTTL   time.Duration
}

func NewUserService(store user.Store, publisher user.EventPublisher, hasher *credential.PasswordHasher, jwt *credential.JWTHandler, tokenTTL time.Duration) *UserService {
	return &UserService{store: store, publisher: publisher, hasher: hasher, jwt: jwt, tokenTTL: tokenTTL}
}

func (s *UserService) Create(ctx context.Context, cmd user.CreateCommand) (user.User, error) {
	if _, err := s.store.FindByUsername(ctx, cmd.Username); err == nil {
		return user.User{}, user.ErrUsernameAlreadyExists
	} else if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, err
	}

	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("user: hashing password: %w", err)
	}

	u := user.User{
		ID:           user.NewID(),
		Username:     cmd.Username,
		Email:        cmd.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.store.Create(ctx, u); err != nil {
		return user.User{}, err
	}

	if err := s.publisher.PublishUserCreated(ctx, user.CreatedEvent{
		UserID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt,
	}); err != nil {
		_ = err // logged by the publisher; store write already committed
	}

	return u, nil
}

// Authenticate mints a bearer token on success. Both "no such user" and
// "wrong password" collapse to the same InvalidCredentials error so the
// response can't be used to enumerate usernames.
func (s *UserService) Authenticate(ctx context.Context, username user.Username, password string) (user.User, string, error) {
	u, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return user.User{}, "", user.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil || !ok {
		return user.User{}, "", user.ErrInvalidCredentials
	}

	token, err := s.jwt.Encode(credential.ForUser(u.ID.String(), u.Username.String(), s.tokenTTL))
	if err != nil {
		return user.User{}, "", fmt.Errorf("user: minting token: %w", err)
	}

	return u, token, nil
}

func (s *UserService) Update(ctx context.Context, id user.ID, patch user.UpdatePatch) (user.User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Password != nil {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return user.User{}, fmt.Errorf("user: hashing password: %w", err)
		}
		u.PasswordHash = hash
	}

	if err := s.store.Update(ctx, u); err != nil {
		return user.User{}, err
	}

	if err := s.publisher.PublishUserUpdated(ctx, user.UpdatedEvent{
		UserID: u.ID, Username: u.Username, Email: u.Email, UpdatedAt: time.Now(),
	}); err != nil {
		_ = err
	}

	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id user.ID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.publisher.PublishUserDeleted(ctx, user.DeletedEvent{UserID: id, DeletedAt: time.Now()}); err != nil {
		_ = err
	}
	return nil
}

func (s *UserService) Get(ctx context.Context, id user.ID) (user.User, error) {
	return s.store.FindByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, name user.Username) (user.User, error) {
	return s.store.FindByUsername(ctx, name)
}

func (s *UserService) GetMany(ctx context.Context, ids []user.ID) ([]user.User, error) {
	return s.store.FindMany(ctx, ids)
}

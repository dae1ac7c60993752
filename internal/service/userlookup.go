package service

import (
	"context"
	"errors"

	"github.com/chatgrid/chatgrid/internal/domain/replica"
	"github.com/chatgrid/chatgrid/internal/domain/user"
)

// IdentityClient is the capability UserLookupService needs from the
// identity service's gRPC surface: a direct, synchronous GetUser call.
type IdentityClient interface {
	GetUser(ctx context.Context, id user.ID) (user.User, error)
}

// UserLookupService answers "who is this user id" for message enrichment
// without ever blocking on Kafka consumer lag: it reads the local replica
// first, and only calls out to the identity service on a replica miss.
type UserLookupService struct {
	replica  replica.Store
	identity IdentityClient
}

func NewUserLookupService(store replica.Store, identity IdentityClient) *UserLookupService {
	return &UserLookupService{replica: store, identity: identity}
}

// Username resolves a display username, falling back to the identity
// service on a replica cache miss. The replica stays the fast path; the
// fallback only fires while the user-events topic hasn't caught up yet.
func (s *UserLookupService) Username(ctx context.Context, id user.ID) (string, error) {
	row, err := s.replica.FindByID(ctx, id)
	if err == nil {
		return row.Username, nil
	}
	if !errors.Is(err, replica.ErrNotFound) {
		return "", err
	}

	u, err := s.identity.GetUser(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Username.String(), nil
}

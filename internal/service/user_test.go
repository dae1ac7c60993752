package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatgrid/chatgrid/internal/credential"
	"github.com/chatgrid/chatgrid/internal/domain/user"
)

func newUserService() (*UserService, *fakeUserStore) {
	store := newFakeUserStore()
	svc := NewUserService(store, fakeUserPublisher{}, credential.NewPasswordHasher(), credential.NewJWTHandler("test-secret"), time.Hour)
	return svc, store
}

func TestCreateUserThenAuthenticate(t *testing.T) {
	svc, _ := newUserService()
	username, err := user.NewUsername("nicola")
	require.NoError(t, err)
	email, err := user.NewEmailAddress("nicola@example.com")
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), user.CreateCommand{Username: username, Email: email, Password: "hunter22"})
	require.NoError(t, err)

	authed, token, err := svc.Authenticate(context.Background(), username, "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, created.ID, authed.ID)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	svc, _ := newUserService()
	username, err := user.NewUsername("nicola")
	require.NoError(t, err)
	email, err := user.NewEmailAddress("nicola@example.com")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), user.CreateCommand{Username: username, Email: email, Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), user.CreateCommand{Username: username, Email: email, Password: "different"})
	assert.ErrorIs(t, err, user.ErrUsernameAlreadyExists)
}

func TestAuthenticateWrongPasswordIsGenericError(t *testing.T) {
	svc, _ := newUserService()
	username, err := user.NewUsername("nicola")
	require.NoError(t, err)
	email, err := user.NewEmailAddress("nicola@example.com")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), user.CreateCommand{Username: username, Email: email, Password: "hunter22"})
	require.NoError(t, err)

	_, _, err = svc.Authenticate(context.Background(), username, "wrong-password")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestAuthenticateNoSuchUserIsSameGenericError(t *testing.T) {
	svc, _ := newUserService()
	username, err := user.NewUsername("ghost")
	require.NoError(t, err)

	_, _, err = svc.Authenticate(context.Background(), username, "whatever")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

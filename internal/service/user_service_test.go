package service

import (
	"context"
	"testing"
	"time"

	"portfee/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Login(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.users.Login(ctx, LoginRequest{Username: "skat", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.True(t, res.ExpiresAt.After(time.Now()))

	id, err := ParseToken(testSecret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, e.taxAuthority.ID, id)

	user, err := e.users.GetActiveUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.GroupTaxAuthority, user.Group)

	_, err = e.users.Login(ctx, LoginRequest{Username: "skat", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.users.Login(ctx, LoginRequest{Username: "nobody", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_InactiveUsersCannotLogIn(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.ship.IsActive = false
	require.NoError(t, e.userRepo.Update(ctx, e.ship))

	_, err := e.users.Login(ctx, LoginRequest{Username: e.ship.Username, Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.users.GetActiveUser(ctx, e.ship.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_CreateUserValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateUserRequest
	}{
		{"unknown group", CreateUserRequest{Username: "x", Password: "secret1", Group: "Pirate"}},
		{"port authority without authority", CreateUserRequest{Username: "y", Password: "secret1", Group: model.GroupPortAuthority}},
		{"agent without agency", CreateUserRequest{Username: "z", Password: "secret1", Group: model.GroupShippingAgent}},
		{"duplicate username", CreateUserRequest{Username: "skat", Password: "secret1", Group: model.GroupTaxAuthority}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.users.CreateUser(ctx, tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestParseToken(t *testing.T) {
	now := time.Now()
	id := uuid.New()

	token, _, err := IssueToken(testSecret, id, "Ship", time.Hour, now)
	require.NoError(t, err)

	_, err = ParseToken([]byte("other"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, _, err := IssueToken(testSecret, id, "Ship", time.Hour, now.Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = ParseToken(testSecret, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken(testSecret, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

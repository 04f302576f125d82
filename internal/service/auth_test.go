package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kiranbanna12/xrozen-chat/middleware/jwt"
)

func newAuthFixture(t *testing.T) (IAuthService, *jwt.TokenManager) {
	t.Helper()
	tokens := jwt.NewTokenManager("test-secret", 24, 72)
	return NewAuthService(newFakeUserRepo(), tokens), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, tokens := newAuthFixture(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterRequest{
		Email:       "carol@example.com",
		DisplayName: "Carol",
		Password:    "correct horse battery",
	})
	require.NoError(t, err)
	require.NotEmpty(t, registered.Token)
	assert.Equal(t, "Carol", registered.User.DisplayName)

	claims, err := tokens.ParseToken(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, jwt.KindUser, claims.Kind)
	assert.Equal(t, registered.User.ID, claims.UserID)

	logged, err := svc.Login(ctx, &LoginRequest{
		Email:    "carol@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, logged.User.ID)
}

func TestRegister_EmailTaken(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{
		Email: "carol@example.com", DisplayName: "Carol", Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &RegisterRequest{
		Email: "carol@example.com", DisplayName: "Other Carol", Password: "password456",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Register(ctx, &RegisterRequest{
		Email: "carol@example.com", DisplayName: "Carol", Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginRequest{Email: "carol@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

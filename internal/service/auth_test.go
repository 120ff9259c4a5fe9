package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/macrolog/backend/internal/service"
	"github.com/pageza/macrolog/backend/internal/testhelpers"
	"github.com/pageza/macrolog/backend/internal/types"
)

func setupAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	db := testhelpers.SetupSQLiteDB(t)
	return service.NewAuthService(db, "test-secret").WithBcryptCost(bcrypt.MinCost)
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, " Ada@Example.com ", "s3cret-pass", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	loggedIn, loginToken, err := svc.Login(ctx, "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, loginToken)
}

func TestAuthServiceRegisterDuplicate(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "dup@example.com", "password123", "One")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "DUP@example.com", "password123", "Two")
	assert.ErrorIs(t, err, service.ErrUserExists)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc := setupAuthService(t)

	tests := []struct {
		name, email, password, user, field string
	}{
		{"bad email", "nope", "password123", "N", "email"},
		{"short password", "a@b.c", "short", "N", "password"},
		{"missing name", "a@b.c", "password123", " ", "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tt.email, tt.password, tt.user)
			var verr *service.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestAuthServiceLoginFailures(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "bob@example.com", "password123", "Bob")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "bob@example.com", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuthServiceValidateToken(t *testing.T) {
	svc := setupAuthService(t)

	sign := func(secret string, method jwt.SigningMethod, claims *types.TokenClaims) string {
		token := jwt.NewWithClaims(method, claims)
		s, err := token.SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	valid := func() *types.TokenClaims {
		return &types.TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
			UserID:           uuid.New(),
		}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	noUser := valid()
	noUser.UserID = uuid.Nil

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign("other-secret", jwt.SigningMethodHS256, valid())},
		{"expired", sign("test-secret", jwt.SigningMethodHS256, expired)},
		{"missing user", sign("test-secret", jwt.SigningMethodHS256, noUser)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, service.ErrInvalidToken)
		})
	}
}

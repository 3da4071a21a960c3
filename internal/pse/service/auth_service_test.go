package service

import (
	"testing"

	"github.com/arifsuz/pre-shipment-system/internal/middleware"
	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"github.com/arifsuz/pre-shipment-system/internal/pse/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Login(t *testing.T) {
	db, svc := newTestServices(t)
	testutil.SeedUser(t, db, "u-1", "operator", "secret123", entity.RoleViewer)

	result, err := svc.Auth.Login(ctx, &LoginRequest{Username: "operator", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Empty(t, result.RefreshToken, "refresh tokens need redis")
	assert.Equal(t, "u-1", result.User.ID)

	claims := &middleware.JWTClaims{}
	_, err = jwt.ParseWithClaims(result.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testutil.JWTSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, []string{entity.RoleViewer}, claims.Roles)

	byEmail, err := svc.Auth.Login(ctx, &LoginRequest{Username: "operator@test.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", byEmail.User.ID)
}

func TestAuthService_LoginFailures(t *testing.T) {
	db, svc := newTestServices(t)
	testutil.SeedUser(t, db, "u-1", "operator", "secret123", entity.RoleViewer)
	testutil.SeedUser(t, db, "u-2", "retired", "secret123", entity.RoleViewer)
	require.NoError(t, db.Model(&entity.User{}).Where("id = ?", "u-2").Update("is_active", false).Error)

	_, err := svc.Auth.Login(ctx, &LoginRequest{Username: "operator", Password: "wrong"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Auth.Login(ctx, &LoginRequest{Username: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Auth.Login(ctx, &LoginRequest{Username: "retired", Password: "secret123"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Auth.Refresh(ctx, "anything")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NoError(t, svc.Auth.Logout(ctx, "anything"))
}

func TestUserService_CreateAndDelete(t *testing.T) {
	_, svc := newTestServices(t)

	user, err := svc.User.Create(ctx, &CreateUserRequest{
		Email: "Sari@Example.com", Nama: "Sari", Username: "sari", Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "sari@example.com", user.Email)
	assert.Equal(t, entity.RoleViewer, user.Role)
	assert.NotEqual(t, "secret123", user.Password)

	_, err = svc.User.Create(ctx, &CreateUserRequest{
		Email: "other@example.com", Nama: "Other", Username: "sari", Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.User.Create(ctx, &CreateUserRequest{
		Email: "x@example.com", Nama: "X", Username: "xuser", Password: "secret123", Role: "ROOT",
	})
	assert.ErrorIs(t, err, ErrValidation)

	assert.ErrorIs(t, svc.User.Delete(ctx, user.ID, user.ID), ErrValidation)
	assert.ErrorIs(t, svc.User.Delete(ctx, "missing", user.ID), ErrNotFound)
	require.NoError(t, svc.User.Delete(ctx, user.ID, "someone-else"))

	n, err := svc.User.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUserService_EnsureAdmin(t *testing.T) {
	_, svc := newTestServices(t)

	admin, err := svc.User.EnsureAdmin(ctx, "admin", "admin@example.com", "Administrator", "first-pass")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, admin.Role)

	again, err := svc.User.EnsureAdmin(ctx, "admin", "admin@example.com", "Administrator", "second-pass")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	_, err = svc.Auth.Login(ctx, &LoginRequest{Username: "admin", Password: "second-pass"})
	require.NoError(t, err)
	_, err = svc.Auth.Login(ctx, &LoginRequest{Username: "admin", Password: "first-pass"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dongapp/dong/internal/auth"
	"github.com/dongapp/dong/internal/storage/sqlite"
)

func newUserService(store *sqlite.SQLiteStore) *UserService {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	return NewUserService(auth.NewPasswordAuthenticator(store), jwtManager, store, testLogger())
}

func TestSignupAndLogin(t *testing.T) {
	store := newTestStore(t)
	svc := newUserService(store)
	ctx := context.Background()

	user, token, err := svc.Signup(ctx, "new@example.com", "New User", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	loggedIn, token, err := svc.Login(ctx, "new@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)
}

func TestSignup_WeakPassword(t *testing.T) {
	store := newTestStore(t)
	svc := newUserService(store)

	_, _, err := svc.Signup(context.Background(), "weak@example.com", "Weak", "short")
	assert.ErrorIs(t, err, auth.ErrWeakPassword)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	svc := newUserService(store)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "dup@example.com", "First", "password1")
	require.NoError(t, err)

	_, _, err = svc.Signup(ctx, "dup@example.com", "Second", "password2")
	assert.ErrorIs(t, err, auth.ErrEmailExists)
}

func TestLogin_WrongPassword(t *testing.T) {
	store := newTestStore(t)
	svc := newUserService(store)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "user@example.com", "User", "password1")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "user@example.com", "password2")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "ghost@example.com", "password1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestUpdateUser_SelfOnly(t *testing.T) {
	store := newTestStore(t)
	svc := newUserService(store)
	ctx := context.Background()

	a, _, err := svc.Signup(ctx, "a@example.com", "A", "password1")
	require.NoError(t, err)
	b, _, err := svc.Signup(ctx, "b@example.com", "B", "password1")
	require.NoError(t, err)

	_, err = svc.UpdateUser(ctx, a.ID, b.ID, "Hijacked")
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.UpdateUser(ctx, a.ID, a.ID, "A Renamed")
	require.NoError(t, err)
	assert.Equal(t, "A Renamed", updated.Name)
}

func TestDeleteUser_SelfOnly(t *testing.T) {
	store := newTestStore(t)
	svc := newUserService(store)
	ctx := context.Background()

	a, _, err := svc.Signup(ctx, "a@example.com", "A", "password1")
	require.NoError(t, err)
	b, _, err := svc.Signup(ctx, "b@example.com", "B", "password1")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteUser(ctx, a.ID, b.ID), ErrForbidden)

	require.NoError(t, svc.DeleteUser(ctx, a.ID, a.ID))
	_, err = svc.GetUser(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

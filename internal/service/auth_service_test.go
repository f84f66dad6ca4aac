package service

import (
	"testing"
	"time"

	"learnpath_backend/internal/config"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := setupTestDB(t)
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-0123456789abcdef0123456789"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestRegisterHashesPasswordAndIssuesToken(t *testing.T) {
	svc := newAuthService(t)

	user := &model.User{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "plaintext",
		Role:     model.Learner,
	}
	token, err := svc.Register(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "plaintext", user.Password)

	claims, err := util.ParseJWT(token, svc.Cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.Learner, claims.Role)
}

func TestRegisterDuplicateUsernameReturnsUserExists(t *testing.T) {
	svc := newAuthService(t)

	first := &model.User{Username: "alice", Email: "alice@example.com", Password: "pw123456"}
	_, err := svc.Register(first)
	require.NoError(t, err)

	dup := &model.User{Username: "alice", Email: "other@example.com", Password: "pw123456"}
	_, err = svc.Register(dup)
	assert.ErrorIs(t, err, util.ErrUserExists)
}

func TestLoginByUsernameOrEmail(t *testing.T) {
	svc := newAuthService(t)

	user := &model.User{Username: "alice", Email: "alice@example.com", Password: "pw123456"}
	_, err := svc.Register(user)
	require.NoError(t, err)

	token, logged, err := svc.Login("alice", "pw123456")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, logged.ID)

	_, _, err = svc.Login("alice@example.com", "pw123456")
	require.NoError(t, err)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthService(t)

	user := &model.User{Username: "alice", Email: "alice@example.com", Password: "pw123456"}
	_, err := svc.Register(user)
	require.NoError(t, err)

	_, _, err = svc.Login("alice", "wrong-password")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, _, err = svc.Login("nobody", "pw123456")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}

package repo_test

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aryabov/movify/internal/models"
	"github.com/aryabov/movify/internal/repo"
)

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Movie{},
		&models.Member{},
		&models.Subscription{},
		&models.SubscriptionMovie{},
	))
	return db
}

func TestCreateUser(t *testing.T) {
	t.Parallel()

	r := repo.New(initTestDB(t))
	ctx := context.Background()

	user := models.User{Username: "alice", PasswordHash: "hash", Role: "user", PasswordVersion: 1}
	require.NoError(t, r.CreateUser(ctx, &user))
	require.NotZero(t, user.ID)

	dup := models.User{Username: "alice", PasswordHash: "other", Role: "user", PasswordVersion: 1}
	err := r.CreateUser(ctx, &dup)
	require.ErrorIs(t, err, repo.ErrUserExists)

	// The stored record is untouched by the duplicate attempt.
	stored, err := r.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hash", stored.PasswordHash)
}

func TestRotatePassword(t *testing.T) {
	t.Parallel()

	r := repo.New(initTestDB(t))
	ctx := context.Background()

	user := models.User{
		Username:           "alice",
		PasswordHash:       "old-hash",
		Role:               "user",
		MustChangePassword: true,
		PasswordVersion:    1,
	}
	require.NoError(t, r.CreateUser(ctx, &user))

	require.NoError(t, r.RotatePassword(ctx, user.ID, "new-hash"))

	stored, err := r.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", stored.PasswordHash)
	assert.Equal(t, 2, stored.PasswordVersion)
	assert.False(t, stored.MustChangePassword)
	assert.False(t, stored.PasswordUpdatedAt.IsZero())

	// Each rotation bumps the counter exactly once.
	require.NoError(t, r.RotatePassword(ctx, user.ID, "third-hash"))
	stored, err = r.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.PasswordVersion)

	err = r.RotatePassword(ctx, 9999, "hash")
	require.ErrorIs(t, err, repo.ErrNotFound)
}

func TestUpdateUserFields(t *testing.T) {
	t.Parallel()

	r := repo.New(initTestDB(t))
	ctx := context.Background()

	user := models.User{Username: "alice", PasswordHash: "hash", Role: "user", PasswordVersion: 1}
	require.NoError(t, r.CreateUser(ctx, &user))

	updated, err := r.UpdateUserFields(ctx, user.ID, map[string]any{"full_name": "Alice Cooper"})
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", updated.FullName)

	_, err = r.UpdateUserFields(ctx, 9999, map[string]any{"full_name": "Nobody"})
	require.ErrorIs(t, err, repo.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()

	r := repo.New(initTestDB(t))
	ctx := context.Background()

	user := models.User{Username: "alice", PasswordHash: "hash", Role: "user", PasswordVersion: 1}
	require.NoError(t, r.CreateUser(ctx, &user))

	require.NoError(t, r.DeleteUser(ctx, user.ID))
	require.ErrorIs(t, r.DeleteUser(ctx, user.ID), repo.ErrNotFound)

	_, err := r.GetUserByID(ctx, user.ID)
	require.ErrorIs(t, err, repo.ErrNotFound)
}

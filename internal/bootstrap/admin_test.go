package bootstrap_test

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aryabov/movify/internal/bootstrap"
	"github.com/aryabov/movify/internal/models"
	"github.com/aryabov/movify/internal/repo"
)

func initTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return repo.New(db)
}

func TestEnsureDefaultAdmin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("creates admin once", func(t *testing.T) {
		r := initTestRepo(t)

		require.NoError(t, bootstrap.EnsureDefaultAdmin(ctx, r, "root", "$2a$10$somehash"))

		admin, err := r.GetUserByUsername(ctx, "root")
		require.NoError(t, err)
		assert.Equal(t, "admin", admin.Role)
		assert.Equal(t, "$2a$10$somehash", admin.PasswordHash)
		assert.True(t, admin.MustChangePassword)
		assert.Equal(t, 1, admin.PasswordVersion)
	})

	t.Run("never overwrites an existing record", func(t *testing.T) {
		r := initTestRepo(t)
		require.NoError(t, bootstrap.EnsureDefaultAdmin(ctx, r, "root", "$2a$10$first"))
		require.NoError(t, r.RotatePassword(ctx, 1, "$2a$10$rotated"))

		require.NoError(t, bootstrap.EnsureDefaultAdmin(ctx, r, "root", "$2a$10$first"))

		admin, err := r.GetUserByUsername(ctx, "root")
		require.NoError(t, err)
		assert.Equal(t, "$2a$10$rotated", admin.PasswordHash)
		assert.Equal(t, 2, admin.PasswordVersion)
	})

	t.Run("skips when env is unset", func(t *testing.T) {
		r := initTestRepo(t)

		require.NoError(t, bootstrap.EnsureDefaultAdmin(ctx, r, "", ""))
		require.NoError(t, bootstrap.EnsureDefaultAdmin(ctx, r, "root", ""))

		users, err := r.ListUsers(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}

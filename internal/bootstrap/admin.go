package bootstrap

import (
	"context"
	"errors"

	"github.com/aryabov/movify/internal/logging"
	"github.com/aryabov/movify/internal/models"
	"github.com/aryabov/movify/internal/perms"
	"github.com/aryabov/movify/internal/repo"
)

// EnsureDefaultAdmin seeds the initial admin account from the env-provided
// username and pre-hashed password. It runs once at startup and never
// overwrites an existing record.
func EnsureDefaultAdmin(ctx context.Context, r *repo.GormRepo, username, passwordHash string) error {
	l := logging.FromContext(ctx).With("svc", "bootstrap.admin")

	if username == "" || passwordHash == "" {
		l.Warn("skipping admin creation: missing env vars")
		return nil
	}

	_, err := r.GetUserByUsername(ctx, username)
	if err == nil {
		l.Info("admin already exists", "username", username)
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	admin := models.User{
		Username:           username,
		PasswordHash:       passwordHash,
		Role:               perms.RoleAdmin,
		MustChangePassword: true,
		PasswordVersion:    1,
	}
	if err := r.CreateUser(ctx, &admin); err != nil {
		return err
	}

	l.Info("admin created", "username", username)
	return nil
}

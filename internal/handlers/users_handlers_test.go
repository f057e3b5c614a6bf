package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRoutes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.createUser("root", "rootpassword", "admin")
	target := env.createUser("alice", "password123", "user")
	adminToken := env.token("root", "rootpassword")

	t.Run("list", func(t *testing.T) {
		rec := env.doJSON(http.MethodGet, "/api/users", nil, adminToken)
		require.Equal(t, http.StatusOK, rec.Code)

		users := decodeBody[[]map[string]any](t, rec)
		require.Len(t, users, 2)
		assert.NotContains(t, rec.Body.String(), "passwordHash")
	})

	t.Run("get missing", func(t *testing.T) {
		rec := env.doJSON(http.MethodGet, "/api/users/9999", nil, adminToken)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("role change to moderator resyncs perms", func(t *testing.T) {
		rec := env.doJSON(http.MethodPut, fmt.Sprintf("/api/users/%d", target.ID), map[string]string{
			"role": "moderator",
		}, adminToken)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody[map[string]any](t, rec)
		assert.Equal(t, "moderator", body["role"])
		assert.Contains(t, body["perms"], "handleMembers")
	})

	t.Run("role whitelist", func(t *testing.T) {
		rec := env.doJSON(http.MethodPut, fmt.Sprintf("/api/users/%d", target.ID), map[string]string{
			"role": "admin",
		}, adminToken)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("admin role is protected", func(t *testing.T) {
		root, err := env.Repo.GetUserByUsername(context.Background(), "root")
		require.NoError(t, err)

		rec := env.doJSON(http.MethodPut, fmt.Sprintf("/api/users/%d", root.ID), map[string]string{
			"role": "user",
		}, adminToken)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("edit profile fields", func(t *testing.T) {
		rec := env.doJSON(http.MethodPut, fmt.Sprintf("/api/users/edit/%d", target.ID), map[string]any{
			"fullName":           "Alice Cooper",
			"mustChangePassword": false,
		}, adminToken)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody[map[string]any](t, rec)
		assert.Equal(t, "Alice Cooper", body["fullName"])
		assert.Equal(t, false, body["mustChangePassword"])
	})

	t.Run("edit with no fields", func(t *testing.T) {
		rec := env.doJSON(http.MethodPut, fmt.Sprintf("/api/users/edit/%d", target.ID), map[string]any{}, adminToken)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := env.doJSON(http.MethodDelete, fmt.Sprintf("/api/users/%d", target.ID), nil, adminToken)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.doJSON(http.MethodDelete, fmt.Sprintf("/api/users/%d", target.ID), nil, adminToken)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-admin denied", func(t *testing.T) {
		env.createUser("plain", "password123", "user")
		rec := env.doJSON(http.MethodGet, "/api/users", nil, env.token("plain", "password123"))
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

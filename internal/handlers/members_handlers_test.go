package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryabov/movify/internal/catalog"
)

func TestMemberRoutes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.createUser("mod", "password123", "moderator")
	env.createUser("viewer", "password123", "user")
	modToken := env.token("mod", "password123")
	viewerToken := env.token("viewer", "password123")

	var memberID uint
	t.Run("create", func(t *testing.T) {
		rec := env.doJSON(http.MethodPost, "/api/members", map[string]string{
			"name":  "Leanne Graham",
			"email": "leanne@example.com",
			"city":  "Gwenborough",
		}, modToken)
		require.Equal(t, http.StatusCreated, rec.Code)

		body := decodeBody[map[string]any](t, rec)
		memberID = uint(body["id"].(float64))
	})

	t.Run("create requires name", func(t *testing.T) {
		rec := env.doJSON(http.MethodPost, "/api/members", map[string]string{"email": "x@example.com"}, modToken)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("viewer can list but not manage", func(t *testing.T) {
		rec := env.doJSON(http.MethodGet, "/api/members", nil, viewerToken)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.doJSON(http.MethodGet, fmt.Sprintf("/api/members/%d", memberID), nil, viewerToken)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("update", func(t *testing.T) {
		rec := env.doJSON(http.MethodPut, fmt.Sprintf("/api/members/%d", memberID), map[string]string{
			"city": "Wisokyburgh",
		}, modToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Wisokyburgh", decodeBody[map[string]any](t, rec)["city"])
	})

	t.Run("update rejects empty name", func(t *testing.T) {
		rec := env.doJSON(http.MethodPut, fmt.Sprintf("/api/members/%d", memberID), map[string]string{
			"name": "  ",
		}, modToken)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := env.doJSON(http.MethodDelete, fmt.Sprintf("/api/members/%d", memberID), nil, modToken)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.doJSON(http.MethodDelete, fmt.Sprintf("/api/members/%d", memberID), nil, modToken)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSyncMembers(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.createUser("root", "rootpassword", "admin")
	adminToken := env.token("root", "rootpassword")

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"name": "Leanne Graham", "email": "leanne@example.com", "address": {"city": "Gwenborough"}},
			{"name": "No City", "email": "nocity@example.com", "address": {"city": ""}},
			{"name": "Ervin Howell", "email": "ervin@example.com", "address": {"city": "Wisokyburgh"}}
		]`)
	}))
	defer upstream.Close()
	env.Deps.MemberHandler.Catalog = catalog.NewPlaceholderClient(upstream.URL)

	rec := env.doJSON(http.MethodPost, "/api/members/sync", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, float64(2), body["createdCount"], "entries without a city are skipped")

	// De-dupe by email on the second run.
	rec = env.doJSON(http.MethodPost, "/api/members/sync", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody[map[string]any](t, rec)["createdCount"])
}

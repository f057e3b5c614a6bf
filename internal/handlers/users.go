package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aryabov/movify/internal/events"
	"github.com/aryabov/movify/internal/perms"
	"github.com/aryabov/movify/internal/repo"
	"github.com/aryabov/movify/internal/service"
)

type UserHandler struct {
	Svc      *service.AuthService
	Repo     *repo.GormRepo
	Producer *events.Producer
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.Repo.ListUsers(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	out := make([]any, 0, len(users))
	for i := range users {
		out = append(out, h.Svc.PublicUser(&users[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	user, err := h.Repo.GetUserByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, h.Svc.PublicUser(user))
}

// UpdateRole promotes or demotes between user and moderator. Admin accounts
// are never changed through this route.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	nextRole := strings.ToLower(strings.TrimSpace(req.Role))
	if nextRole != perms.RoleUser && nextRole != perms.RoleModerator {
		return echo.NewHTTPError(http.StatusBadRequest, "Role must be 'user' or 'moderator'")
	}

	current, err := h.Repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	if strings.ToLower(current.Role) == perms.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Admin role cannot be changed via this route")
	}

	updated, err := h.Repo.UpdateUserFields(ctx, id, map[string]any{
		"role":  nextRole,
		"perms": h.Svc.Perms.ForRole(nextRole),
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(id), map[string]any{
		"type":   "user_role_changed",
		"userID": id,
		"role":   nextRole,
	})

	return c.JSON(http.StatusOK, h.Svc.PublicUser(updated))
}

// EditUser updates profile fields; role changes go through UpdateRole.
func (h *UserHandler) EditUser(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req struct {
		Username           *string   `json:"username"`
		FullName           *string   `json:"fullName"`
		MustChangePassword *bool     `json:"mustChangePassword"`
		Perms              *[]string `json:"perms"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	fields := map[string]any{}
	if req.Username != nil {
		fields["username"] = strings.TrimSpace(*req.Username)
	}
	if req.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.MustChangePassword != nil {
		fields["must_change_password"] = *req.MustChangePassword
	}
	if req.Perms != nil {
		fields["perms"] = *req.Perms
	}
	if len(fields) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No valid fields to update")
	}

	updated, err := h.Repo.UpdateUserFields(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, h.Svc.PublicUser(updated))
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	if err := h.Repo.DeleteUser(c.Request().Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(id), map[string]any{
		"type":   "user_deleted",
		"userID": id,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}

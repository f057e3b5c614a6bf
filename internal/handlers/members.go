package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aryabov/movify/internal/catalog"
	"github.com/aryabov/movify/internal/events"
	"github.com/aryabov/movify/internal/models"
	"github.com/aryabov/movify/internal/repo"
)

type MemberHandler struct {
	Repo     *repo.GormRepo
	Producer *events.Producer
	Catalog  *catalog.PlaceholderClient
}

func (h *MemberHandler) ListMembers(c echo.Context) error {
	members, err := h.Repo.ListMembers(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, members)
}

func (h *MemberHandler) GetMember(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid member id")
	}

	member, err := h.Repo.GetMemberByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Member not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, member)
}

func (h *MemberHandler) CreateMember(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		City  string `json:"city"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Field 'name' is required")
	}

	member := models.Member{
		Name:  name,
		Email: strings.TrimSpace(req.Email),
		City:  strings.TrimSpace(req.City),
	}
	if err := h.Repo.CreateMember(ctx, &member); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	publish(c, h.Producer, events.TopicMemberEvents, fmt.Sprint(member.ID), map[string]any{
		"type":     "member_created",
		"memberID": member.ID,
		"name":     member.Name,
	})

	return c.JSON(http.StatusCreated, member)
}

func (h *MemberHandler) UpdateMember(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid member id")
	}

	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
		City  *string `json:"city"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		fields["email"] = strings.TrimSpace(*req.Email)
	}
	if req.City != nil {
		fields["city"] = strings.TrimSpace(*req.City)
	}
	if len(fields) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No valid fields to update")
	}
	if name, ok := fields["name"]; ok && name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Field 'name' cannot be empty")
	}

	member, err := h.Repo.UpdateMemberFields(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Member not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, member)
}

func (h *MemberHandler) DeleteMember(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid member id")
	}

	if err := h.Repo.DeleteMember(c.Request().Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Member not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	publish(c, h.Producer, events.TopicMemberEvents, fmt.Sprint(id), map[string]any{
		"type":     "member_deleted",
		"memberID": id,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Member deleted successfully"})
}

// SyncMembers imports directory users, de-duplicating by email.
func (h *MemberHandler) SyncMembers(c echo.Context) error {
	ctx := c.Request().Context()

	people, err := h.Catalog.Users(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "catalog fetch failed")
	}

	created := []models.Member{}
	for _, p := range people {
		if _, err := h.Repo.GetMemberByEmail(ctx, p.Email); err == nil {
			continue
		} else if !errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
		}

		member := models.Member{Name: p.Name, Email: p.Email, City: p.City}
		if err := h.Repo.CreateMember(ctx, &member); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
		}
		created = append(created, member)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Members synchronized successfully",
		"createdCount": len(created),
		"created":      created,
	})
}

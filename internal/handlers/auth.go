package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aryabov/movify/internal/events"
	"github.com/aryabov/movify/internal/logging"
	authmw "github.com/aryabov/movify/internal/middleware/auth"
	"github.com/aryabov/movify/internal/repo"
	"github.com/aryabov/movify/internal/service"
)

type AuthHandler struct {
	Svc      *service.AuthService
	Producer *events.Producer
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrValidation) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(res.User.ID), map[string]any{
		"type":     "user_logged_in",
		"userID":   res.User.ID,
		"username": res.User.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"access_token": res.AccessToken,
		"token_type":   "Bearer",
		"expiresIn":    res.ExpiresIn.String(),
		"user":         res.User,
	})
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		Username           string `json:"username"`
		Password           string `json:"password"`
		FullName           string `json:"fullName"`
		Role               string `json:"role"`
		MustChangePassword *bool  `json:"mustChangePassword"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	pub, err := h.Svc.Register(ctx, service.RegisterInput{
		Username:           req.Username,
		Password:           req.Password,
		FullName:           req.FullName,
		Role:               req.Role,
		MustChangePassword: req.MustChangePassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
		case errors.Is(err, repo.ErrUserExists):
			return echo.NewHTTPError(http.StatusConflict, "Username already taken")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(pub.ID), map[string]any{
		"type":     "user_registered",
		"userID":   pub.ID,
		"username": pub.Username,
		"role":     pub.Role,
	})

	return c.JSON(http.StatusCreated, pub)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_change_password")

	ident := authmw.CurrentIdentity(c)
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		OldPassword     string `json:"oldPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("change_password_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	current := req.CurrentPassword
	if current == "" {
		current = req.OldPassword
	}

	token, err := h.Svc.ChangePassword(ctx, ident.ID, current, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "Password must be at least 8 characters")
		case errors.Is(err, service.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(ident.ID), map[string]any{
		"type":     "password_changed",
		"userID":   ident.ID,
		"username": ident.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

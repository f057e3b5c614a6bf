package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aryabov/movify/internal/service"
)

const identityKey = "identity"

type Guard struct {
	Svc *service.AuthService
}

func NewGuard(svc *service.AuthService) *Guard {
	return &Guard{Svc: svc}
}

// CurrentIdentity returns the identity stored by RequireAuth, or nil when
// the request did not pass through it.
func CurrentIdentity(c echo.Context) *service.Identity {
	if v, ok := c.Get(identityKey).(*service.Identity); ok {
		return v
	}
	return nil
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(h)
}

// RequireAuth validates the bearer token and resolves the caller against the
// current stored record. Invalid, expired and stale tokens all surface as
// the same generic 401.
func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
		}

		ident, err := g.Svc.Authenticate(c.Request().Context(), token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}

		c.Set(identityKey, ident)
		return next(c)
	}
}

// RequirePermission gates a route on one or more permissions; all of them
// must be granted. The 403 body lists required and granted permissions.
func (g *Guard) RequirePermission(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident := CurrentIdentity(c)
			if ident == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}
			if err := g.Svc.Authorize(ident, required...); err != nil {
				if perr, ok := err.(*service.PermissionError); ok {
					return c.JSON(http.StatusForbidden, echo.Map{
						"message":  "Forbidden",
						"role":     perr.Role,
						"required": perr.Required,
						"granted":  perr.Granted,
					})
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}
			return next(c)
		}
	}
}

package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/sirpyerre/jwtauth-api/internal/api/metrics"
)

// AuthorizeConfig configures the authorization guard.
type AuthorizeConfig struct {
	// Skipper marks endpoints open to anonymous access. All checks are
	// skipped when it returns true.
	Skipper echomiddleware.Skipper
	// Roles, when non-empty, is the set of roles allowed through.
	Roles []string
}

// Authorize requires an authenticated user and, when roles are given, a user
// whose role is one of them.
func Authorize(roles ...string) echo.MiddlewareFunc {
	return AuthorizeWithConfig(AuthorizeConfig{Roles: roles})
}

// AuthorizeWithConfig short-circuits with 401 when no user is attached and
// with 403 when the user's role is outside cfg.Roles. A missing user never
// reaches the role check.
func AuthorizeWithConfig(cfg AuthorizeConfig) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = echomiddleware.DefaultSkipper
	}
	roles := append([]string(nil), cfg.Roles...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}

			user, ok := CurrentUser(c)
			if !ok {
				metrics.AuthorizationDeniedTotal.WithLabelValues("unauthorized").Inc()
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			}

			if len(roles) > 0 && !user.HasRole(roles...) {
				metrics.AuthorizationDeniedTotal.WithLabelValues("forbidden").Inc()
				return c.JSON(http.StatusForbidden, map[string]string{"message": "Forbidden"})
			}
			return next(c)
		}
	}
}

// AllowAnonymous returns a Skipper matching the given registered route paths.
func AllowAnonymous(paths ...string) echomiddleware.Skipper {
	open := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		open[p] = struct{}{}
	}
	return func(c echo.Context) bool {
		_, ok := open[c.Path()]
		return ok
	}
}

package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/jwtauth-api/internal/api/metrics"
	"github.com/sirpyerre/jwtauth-api/internal/core/domain"
	"github.com/sirpyerre/jwtauth-api/internal/core/ports"
)

// Authenticate resolves the bearer token of every request into a user and
// attaches it to the request context. It never rejects a request: a missing,
// invalid or expired token, or a user id that no longer resolves, simply
// leaves the request anonymous. Rejection is the job of Authorize.
func Authenticate(tokens ports.TokenService, directory ports.UserDirectory, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.TokenResolutionsTotal.WithLabelValues("none").Inc()
				return next(c)
			}

			userID, ok := tokens.Validate(token)
			if !ok {
				metrics.TokenResolutionsTotal.WithLabelValues("rejected").Inc()
				return next(c)
			}

			req := c.Request()
			user, err := directory.FindByID(req.Context(), userID)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					metrics.TokenResolutionsTotal.WithLabelValues("unknown_user").Inc()
				} else {
					metrics.TokenResolutionsTotal.WithLabelValues("lookup_error").Inc()
					log.Warn().Err(err).Int("user_id", userID).Msg("resolve token user")
				}
				return next(c)
			}

			metrics.TokenResolutionsTotal.WithLabelValues("attached").Inc()
			c.SetRequest(req.WithContext(domain.ContextWithUser(req.Context(), user)))
			return next(c)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CurrentUser returns the user attached by Authenticate.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	return domain.UserFromContext(c.Request().Context())
}

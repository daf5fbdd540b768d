package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/jwtauth-api/internal/api/middleware"
	"github.com/sirpyerre/jwtauth-api/internal/core/domain"
)

// currentUser returns the user attached by the Authenticate middleware. Routes
// are expected to sit behind Authorize; the error path covers a handler
// mounted without it.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

package ports

import (
	"context"

	"github.com/sirpyerre/jwtauth-api/internal/core/domain"
)

// UserDirectory resolves seeded users. Lookups that match nothing return
// domain.ErrUserNotFound.
type UserDirectory interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

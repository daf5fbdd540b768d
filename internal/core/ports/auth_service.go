package ports

import (
	"context"

	"github.com/sirpyerre/jwtauth-api/internal/core/domain"
)

type AuthService interface {
	Authenticate(ctx context.Context, creds domain.Credentials) (*domain.AuthenticateResponse, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

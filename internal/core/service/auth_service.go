package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/jwtauth-api/internal/core/domain"
	"github.com/sirpyerre/jwtauth-api/internal/core/ports"
)

// AuthService implements login and user lookups over the directory.
type AuthService struct {
	directory ports.UserDirectory
	hasher    ports.PasswordHasher
	tokens    ports.TokenService
	log       zerolog.Logger

	// decoyHash is verified against when the username is unknown so both
	// failure paths pay the same hashing cost.
	decoyHash string
}

func NewAuthService(
	directory ports.UserDirectory,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	log zerolog.Logger,
) (*AuthService, error) {
	decoy, err := hasher.Hash("decoy-password")
	if err != nil {
		return nil, fmt.Errorf("new auth service: %w", err)
	}
	return &AuthService{
		directory: directory,
		hasher:    hasher,
		tokens:    tokens,
		log:       log,
		decoyHash: decoy,
	}, nil
}

// Authenticate returns domain.ErrInvalidCredentials for both an unknown
// username and a wrong password.
func (s *AuthService) Authenticate(ctx context.Context, creds domain.Credentials) (*domain.AuthenticateResponse, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.directory.FindByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(creds.Password, s.decoyHash)
			s.log.Debug().Str("username", creds.Username).Msg("login for unknown user")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !s.hasher.Verify(creds.Password, user.PasswordHash) {
		s.log.Debug().Int("user_id", user.ID).Msg("login with wrong password")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	s.log.Info().Int("user_id", user.ID).Str("role", user.Role).Msg("user logged in")
	return domain.NewAuthenticateResponse(user, token), nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.directory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

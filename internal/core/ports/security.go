package ports

import "github.com/sirpyerre/jwtauth-api/internal/core/domain"

// PasswordHasher derives and checks salted adaptive password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenService issues and validates signed bearer tokens.
type TokenService interface {
	Issue(user *domain.User) (string, error)
	// Validate returns the user id carried by token, or false when the token
	// is missing, malformed, badly signed or expired.
	Validate(token string) (int, bool)
}

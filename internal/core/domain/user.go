package domain

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// User models an account known to the directory. Users are seeded at startup
// and never mutated afterwards.
type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"`
}

// HasRole reports whether the user's role is one of roles. Comparison is exact.
func (u *User) HasRole(roles ...string) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Credentials is the login input. It only lives for one Authenticate call.
type Credentials struct {
	Username string
	Password string
}

// AuthenticateResponse is returned on a successful login.
type AuthenticateResponse struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// NewAuthenticateResponse bundles the public user fields with the issued token.
func NewAuthenticateResponse(user *User, token string) *AuthenticateResponse {
	return &AuthenticateResponse{
		ID:       user.ID,
		Name:     user.Name,
		Username: user.Username,
		Token:    token,
	}
}

package memory

import (
	"context"

	"github.com/sirpyerre/jwtauth-api/internal/core/domain"
)

// UserDirectory is a read-only directory over a fixed slice of users. It is
// safe for concurrent use because nothing mutates it after construction.
type UserDirectory struct {
	users []*domain.User
}

func NewUserDirectory(users []*domain.User) *UserDirectory {
	owned := make([]*domain.User, 0, len(users))
	for _, u := range users {
		if u != nil {
			owned = append(owned, clone(u))
		}
	}
	return &UserDirectory{users: owned}
}

func (d *UserDirectory) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range d.users {
		if u.Username == username {
			return clone(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (d *UserDirectory) FindByID(_ context.Context, id int) (*domain.User, error) {
	for _, u := range d.users {
		if u.ID == id {
			return clone(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (d *UserDirectory) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, clone(u))
	}
	return out, nil
}

func clone(u *domain.User) *domain.User {
	c := *u
	return &c
}

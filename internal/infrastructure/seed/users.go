// Package seed loads the static account list the directory is built from.
package seed

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sirpyerre/jwtauth-api/internal/core/domain"
	"github.com/sirpyerre/jwtauth-api/internal/core/ports"
)

type usersFile struct {
	Users []userEntry `yaml:"users"`
}

type userEntry struct {
	ID           int    `yaml:"id"`
	Name         string `yaml:"name"`
	Username     string `yaml:"username"`
	Role         string `yaml:"role"`
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"password_hash"`
}

// LoadUsers reads a YAML users file. Plaintext passwords are hashed with
// hasher; entries carrying password_hash are used as-is.
func LoadUsers(path string, hasher ports.PasswordHasher) ([]*domain.User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	users, err := ParseUsers(data, hasher)
	if err != nil {
		return nil, fmt.Errorf("seed: %s: %w", path, err)
	}
	return users, nil
}

func ParseUsers(data []byte, hasher ports.PasswordHasher) ([]*domain.User, error) {
	var uf usersFile
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return nil, fmt.Errorf("parse users: %w", err)
	}
	if len(uf.Users) == 0 {
		return nil, errors.New("no users defined")
	}

	ids := make(map[int]struct{}, len(uf.Users))
	names := make(map[string]struct{}, len(uf.Users))
	users := make([]*domain.User, 0, len(uf.Users))

	for i, e := range uf.Users {
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("user #%d: %w", i+1, err)
		}
		if _, dup := ids[e.ID]; dup {
			return nil, fmt.Errorf("user #%d: duplicate id %d", i+1, e.ID)
		}
		if _, dup := names[e.Username]; dup {
			return nil, fmt.Errorf("user #%d: duplicate username %q", i+1, e.Username)
		}
		ids[e.ID] = struct{}{}
		names[e.Username] = struct{}{}

		hash := e.PasswordHash
		if hash == "" {
			h, err := hasher.Hash(e.Password)
			if err != nil {
				return nil, fmt.Errorf("user %q: %w", e.Username, err)
			}
			hash = h
		}

		users = append(users, &domain.User{
			ID:           e.ID,
			Name:         e.Name,
			Username:     e.Username,
			Role:         e.Role,
			PasswordHash: hash,
		})
	}
	return users, nil
}

func (e userEntry) validate() error {
	switch {
	case e.ID <= 0:
		return fmt.Errorf("id must be positive, got %d", e.ID)
	case e.Username == "":
		return errors.New("username is required")
	case e.Role == "":
		return errors.New("role is required")
	case e.Password == "" && e.PasswordHash == "":
		return errors.New("password or password_hash is required")
	case e.Password != "" && e.PasswordHash != "":
		return errors.New("password and password_hash are mutually exclusive")
	}
	return nil
}

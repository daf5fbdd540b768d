package seed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/sirpyerre/jwtauth-api/internal/core/service"
)

func TestLoadUsers_ShippedFile(t *testing.T) {
	hasher := service.NewBcryptHasher(bcrypt.MinCost)

	users, err := LoadUsers(filepath.Join("..", "..", "..", "config", "users.yaml"), hasher)
	if err != nil {
		t.Fatalf("LoadUsers returned error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Username != "john123" || users[0].Role != "Admin" {
		t.Fatalf("unexpected first user: %+v", users[0])
	}
	if users[1].Username != "altman123" || users[1].Role != "User" {
		t.Fatalf("unexpected second user: %+v", users[1])
	}
	if !hasher.Verify("JohnDoe@123", users[0].PasswordHash) {
		t.Fatalf("expected plaintext seed password to be hashed")
	}
}

func TestParseUsers_KeepsExistingHash(t *testing.T) {
	hasher := service.NewBcryptHasher(bcrypt.MinCost)
	hash, _ := hasher.Hash("pw")

	data := "users:\n  - id: 5\n    name: Ops\n    username: ops\n    role: Admin\n    password_hash: \"" + hash + "\"\n"
	users, err := ParseUsers([]byte(data), hasher)
	if err != nil {
		t.Fatalf("ParseUsers returned error: %v", err)
	}
	if users[0].PasswordHash != hash {
		t.Fatalf("expected hash to be kept verbatim")
	}
}

func TestParseUsers_Invalid(t *testing.T) {
	hasher := service.NewBcryptHasher(bcrypt.MinCost)

	cases := map[string]string{
		"empty":          "users: []\n",
		"bad yaml":       "users: [",
		"missing id":     "users:\n  - username: a\n    role: User\n    password: x\n",
		"missing user":   "users:\n  - id: 1\n    role: User\n    password: x\n",
		"missing role":   "users:\n  - id: 1\n    username: a\n    password: x\n",
		"no password":    "users:\n  - id: 1\n    username: a\n    role: User\n",
		"both passwords": "users:\n  - id: 1\n    username: a\n    role: User\n    password: x\n    password_hash: y\n",
		"duplicate id":   "users:\n  - id: 1\n    username: a\n    role: User\n    password: x\n  - id: 1\n    username: b\n    role: User\n    password: x\n",
		"duplicate user": "users:\n  - id: 1\n    username: a\n    role: User\n    password: x\n  - id: 2\n    username: a\n    role: User\n    password: x\n",
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseUsers([]byte(data), hasher); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadUsers_MissingFile(t *testing.T) {
	_, err := LoadUsers(filepath.Join(t.TempDir(), "nope.yaml"), service.NewBcryptHasher(bcrypt.MinCost))
	if err == nil || !strings.Contains(err.Error(), "nope.yaml") {
		t.Fatalf("expected read error naming the file, got %v", err)
	}
}

func TestLoadUsers_TempFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	if err := os.WriteFile(path, []byte("users:\n  - id: 9\n    username: z\n    role: User\n    password: pw\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	users, err := LoadUsers(path, service.NewBcryptHasher(bcrypt.MinCost))
	if err != nil || len(users) != 1 || users[0].ID != 9 {
		t.Fatalf("unexpected result: %+v %v", users, err)
	}
}

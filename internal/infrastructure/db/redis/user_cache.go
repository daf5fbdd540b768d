package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/jwtauth-api/internal/core/domain"
	"github.com/sirpyerre/jwtauth-api/internal/core/ports"
)

const defaultCacheTTL = 5 * time.Minute

// CachedDirectory is a read-through cache for FindByID, the lookup the
// authentication middleware performs on every request.
// Key format: user:id:<id>
//
// Cached entries never contain the password hash, so users returned from a
// cache hit cannot be used for credential checks. FindByUsername always goes
// to the wrapped directory.
type CachedDirectory struct {
	next   ports.UserDirectory
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewCachedDirectory(next ports.UserDirectory, client *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedDirectory {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedDirectory{next: next, client: client, ttl: ttl, log: log}
}

type cachedUser struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (d *CachedDirectory) FindByID(ctx context.Context, id int) (*domain.User, error) {
	raw, err := d.client.Get(ctx, d.key(id)).Bytes()
	switch {
	case err == nil:
		var cu cachedUser
		if jsonErr := json.Unmarshal(raw, &cu); jsonErr == nil {
			return &domain.User{ID: cu.ID, Name: cu.Name, Username: cu.Username, Role: cu.Role}, nil
		}
		d.log.Warn().Int("user_id", id).Msg("discarding undecodable cache entry")
	case errors.Is(err, redis.Nil):
	default:
		d.log.Warn().Err(err).Int("user_id", id).Msg("user cache read failed, falling back to directory")
	}

	user, err := d.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	d.store(ctx, user)
	return user, nil
}

func (d *CachedDirectory) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return d.next.FindByUsername(ctx, username)
}

func (d *CachedDirectory) List(ctx context.Context) ([]*domain.User, error) {
	return d.next.List(ctx)
}

// Invalidate drops the cached entry for id.
func (d *CachedDirectory) Invalidate(ctx context.Context, id int) error {
	if err := d.client.Del(ctx, d.key(id)).Err(); err != nil {
		return fmt.Errorf("invalidate user %d: %w", id, err)
	}
	return nil
}

func (d *CachedDirectory) store(ctx context.Context, u *domain.User) {
	payload, err := json.Marshal(cachedUser{ID: u.ID, Name: u.Name, Username: u.Username, Role: u.Role})
	if err != nil {
		return
	}
	if err := d.client.Set(ctx, d.key(u.ID), payload, d.ttl).Err(); err != nil {
		d.log.Warn().Err(err).Int("user_id", u.ID).Msg("user cache write failed")
	}
}

func (d *CachedDirectory) key(id int) string {
	return fmt.Sprintf("user:id:%d", id)
}

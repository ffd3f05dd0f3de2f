package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	pkgredis "github.com/Parzival048/natekarfront/pkg/redis"
)

// ProfileCache keeps resolved profiles around between requests so every page
// load does not cost a round trip to the remote API. A miss is never an error;
// the resolver just fetches.
type ProfileCache interface {
	Get(ctx context.Context, token string) (*User, bool)
	Put(ctx context.Context, token string, user *User)
	Invalidate(ctx context.Context, token string)
}

// NoopCache disables caching; every resolution hits the remote API.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*User, bool) { return nil, false }
func (NoopCache) Put(context.Context, string, *User)        {}
func (NoopCache) Invalidate(context.Context, string)        {}

// RedisProfileCache stores profiles in Redis keyed by a hash of the token,
// so raw credentials never appear in the keyspace.
type RedisProfileCache struct {
	client *pkgredis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisProfileCache creates a Redis-backed profile cache.
func NewRedisProfileCache(client *pkgredis.Client, ttl time.Duration) *RedisProfileCache {
	return &RedisProfileCache{
		client: client,
		ttl:    ttl,
		prefix: "frontdesk:profile:",
	}
}

func (c *RedisProfileCache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return c.prefix + hex.EncodeToString(sum[:])
}

func (c *RedisProfileCache) Get(ctx context.Context, token string) (*User, bool) {
	raw, ok, err := c.client.GetString(ctx, c.key(token))
	if err != nil || !ok {
		return nil, false
	}
	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, false
	}
	return &user, true
}

func (c *RedisProfileCache) Put(ctx context.Context, token string, user *User) {
	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	// Best effort; a failed write only means an extra upstream fetch later.
	_ = c.client.SetString(ctx, c.key(token), string(raw), c.ttl)
}

func (c *RedisProfileCache) Invalidate(ctx context.Context, token string) {
	_ = c.client.Delete(ctx, c.key(token))
}

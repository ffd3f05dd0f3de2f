package session

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Parzival048/natekarfront/pkg/logger"
)

// ProfileFetcher exchanges a bearer token for the user profile it belongs to.
// Implemented by the upstream client.
type ProfileFetcher interface {
	Profile(ctx context.Context, token string) (*User, error)
}

// Resolver turns a possibly-stale stored token into a validated session.
// Resolution runs once per request, before any routing decision. Any failure,
// transient or not, clears the stored token and yields the anonymous session;
// the remote API stays the sole authority on whether a token is good.
type Resolver struct {
	store Store
	fetch ProfileFetcher
	cache ProfileCache
	// jwtSecret enables a local expiry/signature check before the profile
	// fetch. Empty means the token is opaque and goes straight upstream.
	jwtSecret string
	log       *logger.Logger
}

// NewResolver creates a Resolver. A nil cache disables caching.
func NewResolver(store Store, fetch ProfileFetcher, cache ProfileCache, jwtSecret string) *Resolver {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Resolver{
		store:     store,
		fetch:     fetch,
		cache:     cache,
		jwtSecret: jwtSecret,
		log:       logger.Get(),
	}
}

// Resolve loads the stored token and exchanges it for a session. With no
// stored token it completes immediately with the anonymous session and makes
// no network call.
func (r *Resolver) Resolve(c *gin.Context) *Session {
	token, ok := r.store.Load(c)
	if !ok {
		return Anonymous()
	}

	ctx := c.Request.Context()

	if r.jwtSecret != "" && !r.locallyValid(token) {
		r.drop(c, ctx, token)
		return Anonymous()
	}

	if user, hit := r.cache.Get(ctx, token); hit {
		return &Session{Token: token, User: user}
	}

	user, err := r.fetch.Profile(ctx, token)
	if err != nil {
		r.log.Warn("profile resolution failed, clearing session", zap.Error(err))
		r.drop(c, ctx, token)
		return Anonymous()
	}

	r.cache.Put(ctx, token, user)
	return &Session{Token: token, User: user}
}

// drop removes every trace of the token: the durable cookie and the cache entry.
func (r *Resolver) drop(c *gin.Context, ctx context.Context, token string) {
	r.store.Clear(c)
	r.cache.Invalidate(ctx, token)
}

// locallyValid rejects tokens that are expired or not signed with the shared
// secret, saving the upstream round trip. It never accepts on its own; a
// passing token still has to resolve to a profile.
func (r *Resolver) locallyValid(token string) bool {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(r.jwtSecret), nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}), jwt.WithLeeway(30*time.Second))
	return err == nil && parsed.Valid
}

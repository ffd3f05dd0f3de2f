package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Store persists the bearer token between requests. Exactly one durable key
// exists on the client; the store never touches the network.
type Store interface {
	// Load reads the persisted token from the incoming request.
	Load(c *gin.Context) (token string, ok bool)
	// Set persists the token on the client.
	Set(c *gin.Context, token string)
	// Clear removes the persisted token. Idempotent.
	Clear(c *gin.Context)
}

// CookieStore keeps the token in a single HttpOnly cookie. Swapping the
// persistence mechanism means swapping this type; routing and forms only see
// the Store interface.
type CookieStore struct {
	Name   string
	TTL    time.Duration
	Secure bool
	Domain string
}

// NewCookieStore creates a cookie-backed store.
func NewCookieStore(name string, ttl time.Duration, secure bool, domain string) *CookieStore {
	return &CookieStore{Name: name, TTL: ttl, Secure: secure, Domain: domain}
}

func (s *CookieStore) Load(c *gin.Context) (string, bool) {
	token, err := c.Cookie(s.Name)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

func (s *CookieStore) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, token, int(s.TTL.Seconds()), "/", s.Domain, s.Secure, true)
}

func (s *CookieStore) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, "", -1, "/", s.Domain, s.Secure, true)
}

package routegate

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Parzival048/natekarfront/internal/session"
)

// sessionKey is the gin context key the resolved session lives under.
const sessionKey = "frontdesk_session"

// Gate applies route decisions to incoming page requests.
type Gate struct {
	resolver *session.Resolver
}

// NewGate creates a Gate over the given resolver.
func NewGate(resolver *session.Resolver) *Gate {
	return &Gate{resolver: resolver}
}

// Pages resolves the session once per request, stores it in the context and
// enforces the gate decision for the requested path. Resolution is
// synchronous here, so the Wait state never reaches a browser.
func (g *Gate) Pages() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := g.resolver.Resolve(c)
		c.Set(sessionKey, sess)

		d := Decide(StateFor(sess), c.Request.URL.Path)
		if d.Kind == Redirect {
			c.Redirect(http.StatusFound, d.Target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Authenticate resolves the session for API requests without redirecting;
// feature routes run their own role checks and answer in JSON.
func (g *Gate) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionKey, g.resolver.Resolve(c))
		c.Next()
	}
}

// Current returns the session resolved for this request, or the anonymous
// session when no gate middleware ran.
func Current(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return session.Anonymous()
}

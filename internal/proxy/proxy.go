// Package proxy forwards feature API traffic (complaints, attendance, user
// lookups) to the remote operations API. Payloads are opaque here; the front
// desk only authenticates the caller, enforces the per-route role and
// attaches the bearer token from the session.
package proxy

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Parzival048/natekarfront/internal/routegate"
	"github.com/Parzival048/natekarfront/internal/session"
	"github.com/Parzival048/natekarfront/pkg/response"
)

// Route gates one path prefix on the feature surface.
type Route struct {
	// PathPrefix is matched against the incoming request path.
	PathPrefix string
	// Methods restricts HTTP methods (empty = all).
	Methods []string
	// Roles lists the roles allowed through (empty = any authenticated user).
	Roles []string
	// Timeout overrides the default per-request timeout.
	Timeout time.Duration
}

// Config holds the passthrough configuration.
type Config struct {
	// Upstream is the remote API base, including its path prefix
	// (e.g. http://localhost:5000/api).
	Upstream *url.URL
	// StripPrefix is removed from incoming paths before forwarding, so the
	// front desk's /api/... maps onto the upstream's own prefix.
	StripPrefix    string
	Routes         []Route
	DefaultTimeout time.Duration
}

// DefaultRoutes returns the feature surface of the facility-services API.
// Order matters: more specific prefixes come first.
func DefaultRoutes() []Route {
	return []Route{
		{PathPrefix: "/api/complaint/user", Methods: []string{http.MethodGet}, Roles: []string{session.RoleCustomer}},
		{PathPrefix: "/api/complaint", Methods: []string{http.MethodPost}, Roles: []string{session.RoleCustomer}},
		{PathPrefix: "/api/complaint", Methods: []string{http.MethodGet, http.MethodPatch}, Roles: []string{session.RoleAdmin}},
		{PathPrefix: "/api/attendance/mark-attendance", Methods: []string{http.MethodPost}, Roles: []string{session.RoleSupervisor}},
		{PathPrefix: "/api/attendance", Methods: []string{http.MethodGet}, Roles: []string{session.RoleAdmin}},
		{PathPrefix: "/api/users/supervisors", Methods: []string{http.MethodGet}},
		{PathPrefix: "/api/users/profile", Methods: []string{http.MethodGet}},
	}
}

// Passthrough proxies gated feature requests to the upstream API.
type Passthrough struct {
	config Config
	proxy  *httputil.ReverseProxy
}

// New creates a Passthrough for the configured upstream.
func New(config Config) *Passthrough {
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = 30 * time.Second
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          200,
		MaxIdleConnsPerHost:   200,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	rp := httputil.NewSingleHostReverseProxy(config.Upstream)
	rp.Transport = transport

	director := rp.Director
	rp.Director = func(req *http.Request) {
		director(req)
		req.Host = config.Upstream.Host
	}

	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		w.Header().Set("Content-Type", "application/json")
		if isTimeoutError(err) {
			w.WriteHeader(http.StatusGatewayTimeout)
			io.WriteString(w, `{"success":false,"error":{"code":"GATEWAY_TIMEOUT","message":"Operations API timed out"}}`)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"success":false,"error":{"code":"BAD_GATEWAY","message":"Operations API unavailable"}}`)
	}

	rp.ModifyResponse = func(resp *http.Response) error {
		resp.Header.Set("X-Proxied-By", "natekar-frontdesk")
		return nil
	}

	return &Passthrough{config: config, proxy: rp}
}

// findRoute finds the first route matching path and method.
func (p *Passthrough) findRoute(path, method string) *Route {
	for i := range p.config.Routes {
		route := &p.config.Routes[i]
		if !strings.HasPrefix(path, route.PathPrefix) {
			continue
		}
		if len(route.Methods) > 0 && !containsFold(route.Methods, method) {
			continue
		}
		return route
	}
	return nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// Handler returns a gin handler for feature routes. Expects the gate's
// Authenticate middleware to have resolved the session already.
func (p *Passthrough) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := p.findRoute(c.Request.URL.Path, c.Request.Method)
		if route == nil {
			response.NotFound(c, "No route configured for this path")
			c.Abort()
			return
		}

		sess := routegate.Current(c)
		if !sess.Authenticated() {
			response.Unauthorized(c, "Sign in to use this endpoint")
			c.Abort()
			return
		}
		if len(route.Roles) > 0 && !containsFold(route.Roles, sess.Role()) {
			response.Forbidden(c, "Your role cannot access this endpoint")
			c.Abort()
			return
		}

		if p.config.StripPrefix != "" {
			c.Request.URL.Path = strings.TrimPrefix(c.Request.URL.Path, p.config.StripPrefix)
			if c.Request.URL.Path == "" {
				c.Request.URL.Path = "/"
			}
		}

		// The upstream authenticates with the session's bearer token, never
		// with whatever Authorization header the browser sent.
		c.Request.Header.Set("Authorization", "Bearer "+sess.Token)
		if requestID := c.GetHeader("X-Request-ID"); requestID != "" {
			c.Request.Header.Set("X-Request-ID", requestID)
		}

		timeout := route.Timeout
		if timeout == 0 {
			timeout = p.config.DefaultTimeout
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		p.proxy.ServeHTTP(c.Writer, c.Request)
	}
}

func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

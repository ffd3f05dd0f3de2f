package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Parzival048/natekarfront/internal/dto"
	"github.com/Parzival048/natekarfront/internal/routegate"
	"github.com/Parzival048/natekarfront/internal/session"
	"github.com/Parzival048/natekarfront/internal/upstream"
	"github.com/Parzival048/natekarfront/pkg/logger"
	"github.com/Parzival048/natekarfront/pkg/response"
)

// AuthHandler handles sign-in, registration and sign-out.
type AuthHandler struct {
	client *upstream.Client
	store  session.Store
	cache  session.ProfileCache
	log    *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(client *upstream.Client, store session.Store, cache session.ProfileCache, log *logger.Logger) *AuthHandler {
	if cache == nil {
		cache = session.NoopCache{}
	}
	return &AuthHandler{client: client, store: store, cache: cache, log: log}
}

// wantsJSON reports whether the caller expects a JSON answer instead of a
// browser redirect. Form posts from the page shells take the redirect path.
func wantsJSON(c *gin.Context) bool {
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return true
	}
	return strings.Contains(c.ContentType(), "application/json")
}

// Login handles credential submission.
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "BAD_REQUEST", "Email and password are required")
		return
	}

	result, err := h.client.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, upstream.ErrInvalidCredential):
			h.fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		case errors.Is(err, upstream.ErrInvalidServerResponse):
			h.log.Error("login response unusable", zap.Error(err))
			h.fail(c, http.StatusBadGateway, "INVALID_SERVER_RESPONSE", "Invalid server response")
		case errors.Is(err, upstream.ErrTransport):
			h.log.Warn("login upstream unreachable", zap.Error(err))
			h.fail(c, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Operations API unavailable, try again")
		default:
			h.fail(c, http.StatusBadGateway, "LOGIN_FAILED", "Login failed")
		}
		return
	}

	// The session becomes durable only now, after the response passed the
	// token/user/role checks in the client.
	h.store.Set(c, result.Token)
	h.cache.Put(c.Request.Context(), result.Token, result.User)
	h.log.Info("user signed in",
		zap.String("user_id", result.User.ID),
		zap.String("role", result.User.Role),
	)

	home := routegate.RoleHome(result.User.Role)
	if wantsJSON(c) {
		response.Success(c, gin.H{"user": result.User, "redirect": home})
		return
	}
	c.Redirect(http.StatusSeeOther, home)
}

// Register handles account creation. A successful registration never signs
// the user in; they are sent to the login page to enter their credentials.
// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "BAD_REQUEST", "Name, email, password and role are required")
		return
	}
	if valid, msg := req.ValidateEmail(); !valid {
		h.fail(c, http.StatusBadRequest, "INVALID_EMAIL", msg)
		return
	}
	if valid, msg := req.ValidatePassword(); !valid {
		h.fail(c, http.StatusBadRequest, "WEAK_PASSWORD", msg)
		return
	}

	err := h.client.Register(c.Request.Context(), upstream.RegisterPayload{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     session.NormalizeRole(req.Role),
	})
	if err != nil {
		var upErr *upstream.Error
		switch {
		case errors.As(err, &upErr) && upErr.Status == http.StatusConflict:
			h.fail(c, http.StatusConflict, "USER_EXISTS", "An account with this email already exists")
		case errors.Is(err, upstream.ErrTransport):
			h.log.Warn("register upstream unreachable", zap.Error(err))
			h.fail(c, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Operations API unavailable, try again")
		default:
			h.fail(c, http.StatusBadGateway, "REGISTER_FAILED", "Registration failed")
		}
		return
	}

	h.log.Info("user registered", zap.String("role", session.NormalizeRole(req.Role)))
	if wantsJSON(c) {
		response.Created(c, gin.H{"message": "Account created, please sign in"})
		return
	}
	c.Redirect(http.StatusSeeOther, routegate.LoginPath)
}

// Logout clears the session. Clearing an already-empty session is a no-op,
// so repeated logouts always succeed.
// POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, ok := h.store.Load(c); ok {
		h.cache.Invalidate(c.Request.Context(), token)
	}
	h.store.Clear(c)

	if wantsJSON(c) {
		response.Success(c, gin.H{"message": "Signed out"})
		return
	}
	c.Redirect(http.StatusSeeOther, routegate.LoginPath)
}

// fail answers in the caller's preferred shape: JSON envelope for API
// clients, a redirect back to the originating form for browsers.
func (h *AuthHandler) fail(c *gin.Context, status int, code, message string) {
	if wantsJSON(c) {
		response.Error(c, status, code, message, "")
		return
	}
	target := routegate.LoginPath
	if strings.HasPrefix(c.Request.URL.Path, routegate.RegisterPath) {
		target = routegate.RegisterPath
	}
	c.Redirect(http.StatusSeeOther, target+"?error="+code)
}

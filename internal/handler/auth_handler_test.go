package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parzival048/natekarfront/internal/session"
	"github.com/Parzival048/natekarfront/internal/upstream"
	"github.com/Parzival048/natekarfront/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAuthRouter(t *testing.T, remote http.Handler) (*gin.Engine, *session.CookieStore) {
	t.Helper()
	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)

	client, err := upstream.New(upstream.Config{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second})
	require.NoError(t, err)

	store := session.NewCookieStore("nf_token", time.Hour, false, "")
	h := NewAuthHandler(client, store, nil, logger.Get())

	router := gin.New()
	router.POST("/login", h.Login)
	router.POST("/register", h.Register)
	router.POST("/logout", h.Logout)
	return router, store
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "nf_token" {
			return c
		}
	}
	return nil
}

func TestLogin_SetsCookieAndRedirectsToRoleHome(t *testing.T) {
	router, _ := setupAuthRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"token":"tok-1","user":{"_id":"u1","name":"Asha","role":"Admin"}}`)
	}))

	w := postForm(router, "/login", url.Values{"email": {"a@x.com"}, "password": {"pw"}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Equal(t, "tok-1", cookie.Value)
}

func TestLogin_MissingRoleLeavesSessionUntouched(t *testing.T) {
	router, _ := setupAuthRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"token":"tok-1","user":{"_id":"u1","name":"Asha"}}`)
	}))

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@x.com","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_SERVER_RESPONSE")
	// No cookie, no navigation: the user stays signed out on the login page.
	assert.Nil(t, sessionCookie(w))
	assert.Empty(t, w.Header().Get("Location"))
}

func TestLogin_BadCredentials(t *testing.T) {
	router, _ := setupAuthRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"Invalid credentials"}`)
	}))

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@x.com","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
	assert.Nil(t, sessionCookie(w))
}

func TestLogin_UpstreamDown(t *testing.T) {
	client, err := upstream.New(upstream.Config{BaseURL: "http://127.0.0.1:1/api", Timeout: time.Second})
	require.NoError(t, err)
	store := session.NewCookieStore("nf_token", time.Hour, false, "")
	h := NewAuthHandler(client, store, nil, logger.Get())

	router := gin.New()
	router.POST("/login", h.Login)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@x.com","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "UPSTREAM_UNAVAILABLE")
	assert.Nil(t, sessionCookie(w))
}

func TestRegister_NeverSignsIn(t *testing.T) {
	router, _ := setupAuthRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Even if the remote API answered with a token, registration must
		// not persist one.
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"token":"tok-x","message":"created"}`)
	}))

	w := postForm(router, "/register", url.Values{
		"name":     {"Asha"},
		"email":    {"a@x.com"},
		"password": {"Password1"},
		"role":     {"customer"},
	})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Nil(t, sessionCookie(w))
}

func TestRegister_RejectsUnknownRole(t *testing.T) {
	called := false
	router, _ := setupAuthRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/register",
		strings.NewReader(`{"name":"Asha","email":"a@x.com","password":"Password1","role":"admin"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
}

func TestLogout_Idempotent(t *testing.T) {
	router, _ := setupAuthRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	// With a session.
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "nf_token", Value: "tok-1"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Less(t, cookie.MaxAge, 0)

	// Without one: same outcome.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parzival048/natekarfront/internal/routegate"
	"github.com/Parzival048/natekarfront/internal/session"
	"github.com/Parzival048/natekarfront/internal/upstream"
	"github.com/Parzival048/natekarfront/pkg/logger"
)

type fixedFetcher struct {
	user *session.User
}

func (f *fixedFetcher) Profile(context.Context, string) (*session.User, error) {
	if f.user == nil {
		return nil, errors.New("unknown token")
	}
	return f.user, nil
}

func setupExportRouter(t *testing.T, user *session.User, remote http.Handler) *gin.Engine {
	t.Helper()
	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)

	client, err := upstream.New(upstream.Config{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second})
	require.NoError(t, err)

	store := session.NewCookieStore("nf_token", time.Hour, false, "")
	resolver := session.NewResolver(store, &fixedFetcher{user: user}, nil, "")
	gate := routegate.NewGate(resolver)

	h := NewExportHandler(client, logger.Get())
	router := gin.New()
	router.GET("/api/attendance/export", gate.Authenticate(), h.Attendance)
	return router
}

func getExport(router *gin.Engine, query, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/attendance/export"+query, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "nf_token", Value: token})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestExport_StreamsWorkbookWithFilename(t *testing.T) {
	payload := []byte("PK\x03\x04fake-xlsx")
	router := setupExportRouter(t, &session.User{ID: "a1", Role: "admin"},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/attendance/export", r.URL.Path)
			assert.Equal(t, "Bearer tok-a", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			w.Write(payload)
		}))

	w := getExport(router, "?month=7&year=2026", "tok-a")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="attendance-2026-07.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, payload, w.Body.Bytes())
}

func TestExport_NonAdminForbidden(t *testing.T) {
	router := setupExportRouter(t, &session.User{ID: "u1", Role: "customer"},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("request must not reach the upstream")
		}))

	w := getExport(router, "?month=7&year=2026", "tok-c")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestExport_AnonymousUnauthorized(t *testing.T) {
	router := setupExportRouter(t, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the upstream")
	}))

	w := getExport(router, "?month=7&year=2026", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExport_ValidatesMonthAndYear(t *testing.T) {
	router := setupExportRouter(t, &session.User{ID: "a1", Role: "admin"},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("request must not reach the upstream")
		}))

	for _, query := range []string{"", "?month=0&year=2026", "?month=13&year=2026", "?month=7&year=1800", "?month=abc&year=2026"} {
		w := getExport(router, query, "tok-a")
		assert.Equal(t, http.StatusBadRequest, w.Code, "query %q", query)
	}
}

func TestExport_UpstreamErrorSurfaced(t *testing.T) {
	router := setupExportRouter(t, &session.User{ID: "a1", Role: "admin"},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"message":"export generation failed"}`)
		}))

	w := getExport(router, "?month=7&year=2026", "tok-a")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Parzival048/natekarfront/internal/routegate"
)

// PageHandler renders the page shells. The gate middleware has already
// decided that the caller may see the requested page, so handlers only
// pick a template and hand it the session user.
type PageHandler struct {
	appName string
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(appName string) *PageHandler {
	return &PageHandler{appName: appName}
}

// Login renders the sign-in page.
// GET /login
func (h *PageHandler) Login(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"app":   h.appName,
		"error": c.Query("error"),
	})
}

// Register renders the account-creation page.
// GET /register
func (h *PageHandler) Register(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{
		"app":   h.appName,
		"error": c.Query("error"),
	})
}

// Customer renders the customer dashboard: raise complaints, track status.
// GET /customer
func (h *PageHandler) Customer(c *gin.Context) {
	h.dashboard(c, "customer.html")
}

// Supervisor renders the supervisor dashboard: mark worker attendance.
// GET /supervisor
func (h *PageHandler) Supervisor(c *gin.Context) {
	h.dashboard(c, "supervisor.html")
}

// Admin renders the admin dashboard: review complaints, attendance, exports.
// GET /admin
func (h *PageHandler) Admin(c *gin.Context) {
	h.dashboard(c, "admin.html")
}

func (h *PageHandler) dashboard(c *gin.Context, template string) {
	sess := routegate.Current(c)
	c.HTML(http.StatusOK, template, gin.H{
		"app":  h.appName,
		"user": sess.User,
	})
}

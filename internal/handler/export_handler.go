package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Parzival048/natekarfront/internal/routegate"
	"github.com/Parzival048/natekarfront/internal/session"
	"github.com/Parzival048/natekarfront/internal/upstream"
	"github.com/Parzival048/natekarfront/pkg/logger"
	"github.com/Parzival048/natekarfront/pkg/response"
)

// ExportHandler streams the monthly attendance workbook from the remote API
// to the browser as a file download.
type ExportHandler struct {
	client *upstream.Client
	log    *logger.Logger
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(client *upstream.Client, log *logger.Logger) *ExportHandler {
	return &ExportHandler{client: client, log: log}
}

// Attendance handles the export download.
// GET /api/attendance/export?month=&year=
func (h *ExportHandler) Attendance(c *gin.Context) {
	sess := routegate.Current(c)
	if !sess.Authenticated() {
		response.Unauthorized(c, "Sign in to download exports")
		return
	}
	if sess.Role() != session.RoleAdmin {
		response.Forbidden(c, "Only administrators can download exports")
		return
	}

	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		response.BadRequest(c, "month must be between 1 and 12")
		return
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > time.Now().Year()+1 {
		response.BadRequest(c, "year is out of range")
		return
	}

	export, err := h.client.ExportAttendance(c.Request.Context(), sess.Token, month, year)
	if err != nil {
		switch {
		case errors.Is(err, upstream.ErrInvalidCredential):
			response.Unauthorized(c, "Session expired, sign in again")
		case errors.Is(err, upstream.ErrTransport):
			h.log.Warn("export upstream unreachable", zap.Error(err))
			response.BadGateway(c, "Operations API unavailable, try again")
		default:
			h.log.Error("export failed", zap.Error(err), zap.Int("month", month), zap.Int("year", year))
			response.BadGateway(c, "Export failed")
		}
		return
	}
	defer export.Body.Close()

	filename := fmt.Sprintf("attendance-%04d-%02d.xlsx", year, month)
	contentType := export.ContentType
	if contentType == "" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	c.DataFromReader(http.StatusOK, export.ContentLength, contentType, export.Body, map[string]string{
		"Content-Disposition": `attachment; filename="` + filename + `"`,
	})
}

package httpapi

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const adminHeader = "X-Admin-Password"

// HandleRolloverMiddleware makes sure today's rollover has run before any
// data is read or written. A failed pass is logged and the request goes on.
func (h *Handler) HandleRolloverMiddleware(c *gin.Context) {
	if _, err := h.svc.Gate.EnsureRolloverRan(c.Request.Context()); err != nil {
		h.logger.Error().
			Err(err).
			Msg("rollover before request failed")
	}
	c.Next()
}

// HandleAdminMiddleware lets through requests carrying the admin password.
func (h *Handler) HandleAdminMiddleware(c *gin.Context) {
	if h.adminPassword == "" {
		h.logger.Warn().Msg("admin route called but no admin password configured")
		abort(c, newAPIError(http.StatusForbidden, "admin access is disabled"))
		return
	}
	given := c.GetHeader(adminHeader)
	if subtle.ConstantTimeCompare([]byte(given), []byte(h.adminPassword)) != 1 {
		h.logger.Warn().
			Str("path", c.FullPath()).
			Msg("admin password mismatch")
		abort(c, newAPIError(http.StatusUnauthorized, "admin password required"))
		return
	}
	c.Next()
}

// HandleRequestLog writes one line per request.
func (h *Handler) HandleRequestLog(c *gin.Context) {
	start := time.Now()
	c.Next()

	event := h.logger.Info()
	if c.Writer.Status() >= http.StatusInternalServerError {
		event = h.logger.Error()
	}
	event.
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).
		Dur("latency", time.Since(start)).
		Msg("handled request")
}

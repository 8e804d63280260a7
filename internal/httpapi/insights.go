package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) HandleHome(c *gin.Context) {
	home, err := h.svc.Insights.Home(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to build home summary")
		return
	}
	c.JSON(http.StatusOK, home)
}

func (h *Handler) HandleInsights(c *gin.Context) {
	report, err := h.svc.Insights.Insights(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to build insights")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) HandleMemberInsights(c *gin.Context) {
	card, err := h.svc.Insights.MemberInsights(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err, "failed to build member insights")
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *Handler) HandleDashboard(c *gin.Context) {
	dash, err := h.svc.Insights.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, dash)
}

// HandleRollover runs a rollover pass now. It does not move the gate's
// last-run day, so the first request tomorrow still triggers one.
func (h *Handler) HandleRollover(c *gin.Context) {
	n, err := h.svc.Rollover.RollOverAll(c.Request.Context())
	if err != nil {
		h.logger.Error().
			Err(err).
			Int("transitioned", n).
			Msg("manual rollover finished with errors")
		c.JSON(http.StatusInternalServerError, gin.H{
			"transitioned": n,
			"error":        "rollover finished with errors",
		})
		return
	}
	h.logger.Info().Int("transitioned", n).Msg("manual rollover")
	c.JSON(http.StatusOK, gin.H{"transitioned": n})
}

func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

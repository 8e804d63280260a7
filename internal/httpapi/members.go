package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addMemberRequest struct {
	Name string `json:"name" binding:"required"`
}

type purchaseRequest struct {
	Item  string `json:"item_type" binding:"required"`
	Value string `json:"value"`
}

func (h *Handler) HandleListMembers(c *gin.Context) {
	names, err := h.svc.Members.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to list members")
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": names})
}

func (h *Handler) HandleAddMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	name, err := h.svc.Members.Add(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err, "failed to add member")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": name})
}

func (h *Handler) HandleRemoveMember(c *gin.Context) {
	if err := h.svc.Members.Remove(c.Request.Context(), c.Param("name")); err != nil {
		h.fail(c, err, "failed to remove member")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) HandleGetProfile(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	exists, err := h.svc.Members.Exists(ctx, name)
	if err != nil {
		h.fail(c, err, "failed to look up member")
		return
	}
	if !exists {
		abort(c, newAPIError(http.StatusNotFound, "member not found"))
		return
	}

	profile, err := h.svc.Ledger.Profile(ctx, name)
	if err != nil {
		h.fail(c, err, "failed to load profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"member":       name,
		"stars":        profile.Stars,
		"star_history": profile.History,
	})
}

func (h *Handler) HandlePurchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	ctx := c.Request.Context()
	name := c.Param("name")
	exists, err := h.svc.Members.Exists(ctx, name)
	if err != nil {
		h.fail(c, err, "failed to look up member")
		return
	}
	if !exists {
		abort(c, newAPIError(http.StatusNotFound, "member not found"))
		return
	}

	res, err := h.svc.Ledger.Purchase(ctx, name, req.Item, req.Value)
	if err != nil {
		h.fail(c, err, "purchase rejected")
		return
	}
	c.JSON(http.StatusOK, res)
}

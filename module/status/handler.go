// Package status is the REST side-channel for presence status changes
// (online/idle/dnd/...). A status change fans out to the user's guild rooms,
// never to channel rooms.
package status

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/covechat/cove/logger"
	"github.com/covechat/cove/middleware/security"
	"github.com/covechat/cove/service/gateway"
	"github.com/covechat/cove/service/store"
	"github.com/covechat/cove/tools/errs"
)

type Handler struct {
	io         *gateway.Server
	membership store.MembershipResolver
}

func NewHandler(io *gateway.Server, membership store.MembershipResolver) *Handler {
	return &Handler{io: io, membership: membership}
}

func (h *Handler) Register(r gin.IRouter) {
	r.POST("/status", h.update)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type statusEvent struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

func (h *Handler) update(c *gin.Context) {
	ident := security.Identity(c)
	if ident == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errs.ErrUnauthorized.Msg})
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs.ErrBadPayload.Msg})
		return
	}

	guilds, err := h.membership.GuildsForUser(c.Request.Context(), ident.UserID)
	if err != nil {
		logger.Errorf("[status] resolve guilds user=%s err=%v", ident.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errs.ErrResolution.Msg})
		return
	}

	evt := statusEvent{UserID: ident.UserID, Username: ident.Username, Status: req.Status}
	for _, g := range guilds {
		h.io.EmitUserStatusChanged(g, evt)
	}
	c.Status(http.StatusNoContent)
}

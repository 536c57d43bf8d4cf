// Package typing is the REST side-channel for typing indicators. It shares
// TypingState with the socket handlers, so entries started here still expire
// on the server-owned timer.
package typing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/covechat/cove/middleware/security"
	"github.com/covechat/cove/service/gateway"
	"github.com/covechat/cove/tools/errs"
)

type Handler struct {
	io *gateway.Server
}

func NewHandler(io *gateway.Server) *Handler {
	return &Handler{io: io}
}

// Register mounts the typing routes on an authenticated router group.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/channels/:id/typing/start", h.start)
	r.POST("/channels/:id/typing/stop", h.stop)
}

func (h *Handler) start(c *gin.Context) {
	ident := security.Identity(c)
	if ident == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errs.ErrUnauthorized.Msg})
		return
	}
	if err := h.io.StartTyping(ident.UserID, c.Param("id")); err != nil {
		c.JSON(httpStatus(err), gin.H{"error": errs.ClientMsg(err)})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) stop(c *gin.Context) {
	ident := security.Identity(c)
	if ident == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errs.ErrUnauthorized.Msg})
		return
	}
	if err := h.io.StopTyping(ident.UserID, c.Param("id")); err != nil {
		c.JSON(httpStatus(err), gin.H{"error": errs.ClientMsg(err)})
		return
	}
	c.Status(http.StatusNoContent)
}

func httpStatus(err error) int {
	if code := errs.Code(err); code != 0 {
		return code
	}
	return http.StatusInternalServerError
}

package security

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/covechat/cove/service/auth"
	"github.com/covechat/cove/tools/errs"
)

// CtxIdentityKey is where the middleware stores the verified identity;
// downstream handlers read it via Identity(c).
const CtxIdentityKey = "identity"

// Middleware authenticates REST side-channel requests with the same bearer
// tokens the WebSocket handshake uses.
func Middleware(verifier auth.Verifier, timeout time.Duration) gin.HandlerFunc {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return func(c *gin.Context) {
		token := extractBearer(c)
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		ident, err := verifier.Verify(ctx, token)
		cancel()
		if err != nil {
			status := http.StatusUnauthorized
			if errs.Code(err) == errs.CodeResolution {
				status = http.StatusInternalServerError
			}
			c.AbortWithStatusJSON(status, gin.H{"error": errs.ClientMsg(err)})
			return
		}
		c.Set(CtxIdentityKey, ident)
		c.Next()
	}
}

// Identity returns the verified identity set by Middleware, or nil.
func Identity(c *gin.Context) *auth.Identity {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return nil
	}
	ident, _ := v.(*auth.Identity)
	return ident
}

func extractBearer(c *gin.Context) string {
	authz := strings.TrimSpace(c.GetHeader("Authorization"))
	if authz != "" && strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	return strings.TrimSpace(c.Query("token"))
}

package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	obsctx "github.com/smallbiznis/voltway/internal/observability/context"
)

// HeaderUserID carries the caller's opaque user id, set by the upstream
// identity provider.
const HeaderUserID = "X-User-Id"

// UserRequired rejects requests without a caller identity.
func (s *Server) UserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if userID == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Set(obsctx.GinUserIDKey, userID)
		c.Request = c.Request.WithContext(obsctx.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// Package context carries request-scoped identifiers from the HTTP edge to
// services and log lines.
package context

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

type key int

const (
	requestIDKey key = iota
	userIDKey
)

// Gin keys mirrored by the HTTP middlewares.
const (
	GinRequestIDKey = "request_id"
	GinUserIDKey    = "user_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return with(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	return from(ctx, requestIDKey)
}

// WithUserID records the acting user supplied by the identity layer.
func WithUserID(ctx context.Context, userID string) context.Context {
	return with(ctx, userIDKey, strings.TrimSpace(userID))
}

func UserIDFromContext(ctx context.Context) string {
	return from(ctx, userIDKey)
}

// UserIDFromGin prefers the request context and falls back to the gin key.
func UserIDFromGin(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if c.Request != nil {
		if id := UserIDFromContext(c.Request.Context()); id != "" {
			return id
		}
	}
	return strings.TrimSpace(c.GetString(GinUserIDKey))
}

func with(ctx context.Context, k key, v string) context.Context {
	if ctx == nil || v == "" {
		return ctx
	}
	return context.WithValue(ctx, k, v)
}

func from(ctx context.Context, k key) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(k).(string)
	return v
}

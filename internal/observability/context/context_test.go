package context

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestUserIDRoundTrip(t *testing.T) {
	ctx := WithUserID(context.Background(), " driver-1 ")
	if got := UserIDFromContext(ctx); got != "driver-1" {
		t.Fatalf("expected driver-1, got %q", got)
	}
	if got := UserIDFromContext(WithUserID(context.Background(), "  ")); got != "" {
		t.Fatalf("expected empty user id, got %q", got)
	}
}

func TestRequestAndUserIDsDoNotCollide(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithUserID(ctx, "driver-1")
	if RequestIDFromContext(ctx) != "req-1" || UserIDFromContext(ctx) != "driver-1" {
		t.Fatalf("unexpected values: %q %q", RequestIDFromContext(ctx), UserIDFromContext(ctx))
	}
}

func TestUserIDFromGinFallsBackToKeys(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Set(GinUserIDKey, " driver-2 ")

	if got := UserIDFromGin(c); got != "driver-2" {
		t.Fatalf("expected driver-2, got %q", got)
	}
}

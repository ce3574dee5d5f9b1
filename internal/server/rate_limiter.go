package server

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	obsctx "github.com/smallbiznis/voltway/internal/observability/context"
)

const (
	defaultWriteLimit  = 60
	defaultWriteWindow = time.Minute
	// Expired windows are swept once the table grows past this size.
	sweepThreshold = 4096
)

// rateLimiter counts writes per user in fixed windows. It only protects the
// API from bursts; reward caps are enforced by the ledger.
type rateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*writeWindow
}

type writeWindow struct {
	start time.Time
	used  int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		windows: make(map[string]*writeWindow),
	}
}

func (r *rateLimiter) Allow(userID string) bool {
	if userID == "" {
		return false
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.windows[userID]
	if !ok || now.Sub(w.start) >= r.window {
		if !ok && len(r.windows) >= sweepThreshold {
			r.sweep(now)
		}
		w = &writeWindow{start: now}
		r.windows[userID] = w
	}
	if w.used >= r.limit {
		return false
	}
	w.used++
	return true
}

func (r *rateLimiter) sweep(now time.Time) {
	for id, w := range r.windows {
		if now.Sub(w.start) >= r.window {
			delete(r.windows, id)
		}
	}
}

// WriteRateLimit limits mutating requests per user.
func (s *Server) WriteRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow(obsctx.UserIDFromGin(c)) {
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

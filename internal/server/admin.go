package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/voltway/internal/events"
	reliabilitydomain "github.com/smallbiznis/voltway/internal/reliability/domain"
	"go.uber.org/zap"
)

type recomputeRequest struct {
	ChargerID string `json:"charger_id"`
}

// RecomputeReliability recomputes one station when charger_id is given and
// every known station otherwise.
func (s *Server) RecomputeReliability(c *gin.Context) {
	var req recomputeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}
	if req.ChargerID == "" {
		req.ChargerID = c.Query("charger_id")
	}

	ctx := c.Request.Context()
	if chargerID := strings.TrimSpace(req.ChargerID); chargerID != "" {
		score, err := s.reliability.Recompute(ctx, chargerID, reliabilitydomain.TriggerBatch)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": score})
		return
	}

	res, err := s.reliability.RecomputeAll(ctx, s.batch.Concurrency)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.log.Info("reliability recompute requested",
		zap.Int("stations", res.Stations),
		zap.Int("failed", res.Failed),
	)

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (s *Server) ResetMonthlyCoins(c *gin.Context) {
	users, err := s.rewards.ResetMonthlyCoins(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"users_reset": users}})
}

// ListPendingEvents lets an external relay drain the outbox.
func (s *Server) ListPendingEvents(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be an integer"))
			return
		}
		limit = v
	}

	items, err := s.outbox.Pending(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if items == nil {
		items = []events.RewardEvent{}
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

type ackRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) AckEvents(c *gin.Context) {
	var req ackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(req.IDs) == 0 {
		AbortWithError(c, newValidationError("ids", "required", "ids is required"))
		return
	}

	ids := make([]snowflake.ID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := snowflake.ParseString(strings.TrimSpace(raw))
		if err != nil || id == 0 {
			AbortWithError(c, newValidationError("ids", "invalid_id", "ids must be event ids"))
			return
		}
		ids = append(ids, id)
	}

	acked, err := s.outbox.MarkPublished(c.Request.Context(), ids...)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"acknowledged": acked}})
}

package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	obsctx "github.com/smallbiznis/voltway/internal/observability/context"
	rewardsdomain "github.com/smallbiznis/voltway/internal/rewards/domain"
)

type rewardsResponse struct {
	*rewardsdomain.UserRewards
	NextRank       *rewardsdomain.Rank `json:"next_rank,omitempty"`
	ProgressToNext float64             `json:"progress_to_next"`
}

func newRewardsResponse(r *rewardsdomain.UserRewards) rewardsResponse {
	resp := rewardsResponse{UserRewards: r, ProgressToNext: r.ProgressToNextRank()}
	if next, ok := r.Rank.Next(); ok {
		resp.NextRank = &next
	}
	return resp
}

// GetMyRewards returns the caller's snapshot. Users who never earned coins
// get an empty Newcomer snapshot.
func (s *Server) GetMyRewards(c *gin.Context) {
	userID := obsctx.UserIDFromGin(c)
	snapshot, err := s.rewards.GetRewards(c.Request.Context(), userID)
	if errors.Is(err, rewardsdomain.ErrRewardsNotFound) {
		snapshot, err = rewardsdomain.NewUserRewards(userID, s.now()), nil
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": newRewardsResponse(snapshot)})
}

func (s *Server) ListMyTransactions(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be a non-negative integer"))
			return
		}
		limit = v
	}

	items, err := s.rewards.ListTransactions(c.Request.Context(), obsctx.UserIDFromGin(c), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if items == nil {
		items = []rewardsdomain.CoinTransaction{}
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) CheckIn(c *gin.Context) {
	res, err := s.rewards.AwardDailyCheckIn(c.Request.Context(), obsctx.UserIDFromGin(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (s *Server) SpendCoins(c *gin.Context) {
	var req rewardsdomain.SpendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.UserID = obsctx.UserIDFromGin(c)

	res, err := s.rewards.SpendCoins(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

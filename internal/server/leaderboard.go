package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	leaderboarddomain "github.com/smallbiznis/voltway/internal/leaderboard/domain"
)

func (s *Server) GetLeaderboard(c *gin.Context) {
	period, err := leaderboarddomain.ParsePeriod(c.Query("period"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be an integer"))
			return
		}
	}

	entries, err := s.leaderboard.Top(c.Request.Context(), period, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if entries == nil {
		entries = []leaderboarddomain.Entry{}
	}

	c.JSON(http.StatusOK, gin.H{"data": entries, "period": period})
}

func (s *Server) GetUserRank(c *gin.Context) {
	period, err := leaderboarddomain.ParsePeriod(c.Query("period"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	userID := c.Param("user_id")
	position, err := s.leaderboard.RankOf(c.Request.Context(), period, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"user_id":  userID,
		"period":   period,
		"position": position,
	}})
}

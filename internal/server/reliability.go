package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetReliability(c *gin.Context) {
	score, err := s.reliability.Get(c.Request.Context(), c.Param("charger_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": score})
}

package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	contributiondomain "github.com/smallbiznis/voltway/internal/contribution/domain"
	obsctx "github.com/smallbiznis/voltway/internal/observability/context"
)

// @Summary      Submit contribution
// @Description  Records a contribution for a charger and awards coins to the author
// @Tags         contributions
// @Accept       json
// @Produce      json
// @Param        charger_id  path  string  true  "Charger ID"
// @Param        X-User-Id   header  string  true  "Caller ID"
// @Param        request     body    contributiondomain.CreateRequest  true  "Contribution"
// @Success      201  {object}  contributiondomain.CreateResult
// @Router       /chargers/{charger_id}/contributions [post]
func (s *Server) CreateContribution(c *gin.Context) {
	var req contributiondomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// The path and the authenticated caller win over the body.
	req.ChargerID = strings.TrimSpace(c.Param("charger_id"))
	req.UserID = obsctx.UserIDFromGin(c)

	res, err := s.contribution.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": res})
}

// @Summary      List contributions
// @Description  Lists every contribution recorded for a charger
// @Tags         contributions
// @Produce      json
// @Param        charger_id  path  string  true  "Charger ID"
// @Success      200  {object}  []contributiondomain.Contribution
// @Router       /chargers/{charger_id}/contributions [get]
func (s *Server) ListContributions(c *gin.Context) {
	items, err := s.contribution.ListByCharger(c.Request.Context(), c.Param("charger_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if items == nil {
		items = []contributiondomain.Contribution{}
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

// @Summary      Charger summary
// @Description  Returns the latest status, pricing and rating of a charger
// @Tags         contributions
// @Produce      json
// @Param        charger_id  path  string  true  "Charger ID"
// @Success      200  {object}  contributiondomain.Summary
// @Router       /chargers/{charger_id}/summary [get]
func (s *Server) GetChargerSummary(c *gin.Context) {
	summary, err := s.contribution.Summary(c.Request.Context(), c.Param("charger_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// @Summary      Get contribution
// @Description  Get contribution by ID
// @Tags         contributions
// @Produce      json
// @Param        id   path      string  true  "Contribution ID"
// @Success      200  {object}  contributiondomain.Contribution
// @Router       /contributions/{id} [get]
func (s *Server) GetContribution(c *gin.Context) {
	item, err := s.contribution.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

// @Summary      Validate contribution
// @Description  Confirms another user's contribution; the first vote earns coins
// @Tags         contributions
// @Produce      json
// @Param        id         path    string  true  "Contribution ID"
// @Param        X-User-Id  header  string  true  "Caller ID"
// @Success      200  {object}  contributiondomain.VoteResult
// @Router       /contributions/{id}/validate [post]
func (s *Server) ValidateContribution(c *gin.Context) {
	s.vote(c, contributiondomain.VoteValidate)
}

// @Summary      Invalidate contribution
// @Description  Disputes another user's contribution; the first vote earns coins
// @Tags         contributions
// @Produce      json
// @Param        id         path    string  true  "Contribution ID"
// @Param        X-User-Id  header  string  true  "Caller ID"
// @Success      200  {object}  contributiondomain.VoteResult
// @Router       /contributions/{id}/invalidate [post]
func (s *Server) InvalidateContribution(c *gin.Context) {
	s.vote(c, contributiondomain.VoteInvalidate)
}

func (s *Server) vote(c *gin.Context, direction contributiondomain.VoteDirection) {
	res, err := s.contribution.Vote(c.Request.Context(), contributiondomain.VoteRequest{
		ContributionID: c.Param("id"),
		UserID:         obsctx.UserIDFromGin(c),
		Direction:      direction,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

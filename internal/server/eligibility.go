package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	eligibilitydomain "github.com/smallbiznis/meritscore/internal/eligibility/domain"
)

func (s *Server) EvaluateEligibility(c *gin.Context) {
	providerID, year, ok := providerYear(c)
	if !ok {
		return
	}

	var facts eligibilitydomain.VolumeFacts
	if err := c.ShouldBindJSON(&facts); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.eligibilitySvc.Evaluate(c.Request.Context(), eligibilitydomain.EvaluateRequest{
		ProviderID:      providerID,
		PerformanceYear: year,
		VolumeFacts:     facts,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetEligibility(c *gin.Context) {
	providerID, year, ok := providerYear(c)
	if !ok {
		return
	}

	resp, err := s.eligibilitySvc.Get(c.Request.Context(), providerID, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

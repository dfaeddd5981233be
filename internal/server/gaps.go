package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) AnalyzeGaps(c *gin.Context) {
	providerID, year, ok := providerYear(c)
	if !ok {
		return
	}

	resp, err := s.gapSvc.Analyze(c.Request.Context(), providerID, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListGaps(c *gin.Context) {
	providerID, year, ok := providerYear(c)
	if !ok {
		return
	}

	resp, err := s.gapSvc.List(c.Request.Context(), providerID, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

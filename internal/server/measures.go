package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	measuredomain "github.com/smallbiznis/meritscore/internal/measure/domain"
)

func (s *Server) ListCatalog(c *gin.Context) {
	specialty := strings.TrimSpace(c.Query("specialty"))

	quality, err := s.measureSvc.ListCatalog(c.Request.Context(), specialty)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	pi, err := s.measureSvc.ListPIMeasures(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	activities, err := s.measureSvc.ListActivities(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"quality_measures":       quality,
		"pi_measures":            pi,
		"improvement_activities": activities,
	}})
}

func (s *Server) ValidateSelection(c *gin.Context) {
	var req measuredomain.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.SpecialtyCode = strings.TrimSpace(req.SpecialtyCode)

	resp, err := s.measureSvc.Validate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReplaceSelections(c *gin.Context) {
	providerID, year, ok := providerYear(c)
	if !ok {
		return
	}

	var req measuredomain.ReplaceSelectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProviderID = providerID
	req.PerformanceYear = year
	req.SpecialtyCode = strings.TrimSpace(req.SpecialtyCode)

	resp, err := s.measureSvc.ReplaceSelections(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSelections(c *gin.Context) {
	providerID, year, ok := providerYear(c)
	if !ok {
		return
	}

	resp, err := s.measureSvc.ListSelections(c.Request.Context(), providerID, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

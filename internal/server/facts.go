package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	perfdomain "github.com/smallbiznis/meritscore/internal/performance/domain"
)

func (s *Server) RecordQuality(c *gin.Context) {
	providerID, year, ok := providerYear(c)
	if !ok {
		return
	}

	var req perfdomain.RecordQualityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProviderID = providerID
	req.PerformanceYear = year
	req.ReportingPeriod = strings.TrimSpace(req.ReportingPeriod)

	resp, err := s.performanceSvc.RecordQuality(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecordPI(c *gin.Context) {
	providerID, year, ok := providerYear(c)
	if !ok {
		return
	}

	var req perfdomain.RecordPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProviderID = providerID
	req.PerformanceYear = year
	req.MeasureCode = strings.TrimSpace(req.MeasureCode)

	resp, err := s.performanceSvc.RecordPI(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecordIA(c *gin.Context) {
	providerID, year, ok := providerYear(c)
	if !ok {
		return
	}

	var req perfdomain.RecordIARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProviderID = providerID
	req.PerformanceYear = year
	req.ActivityCode = strings.TrimSpace(req.ActivityCode)

	resp, err := s.performanceSvc.RecordIA(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecordCost(c *gin.Context) {
	providerID, year, ok := providerYear(c)
	if !ok {
		return
	}

	var req perfdomain.RecordCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProviderID = providerID
	req.PerformanceYear = year
	req.MeasureCode = strings.TrimSpace(req.MeasureCode)

	resp, err := s.performanceSvc.RecordCost(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

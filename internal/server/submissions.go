package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	compositedomain "github.com/smallbiznis/meritscore/internal/composite/domain"
	"github.com/smallbiznis/meritscore/pkg/db/pagination"
)

func (s *Server) ComputeSubmission(c *gin.Context) {
	providerID, year, ok := providerYear(c)
	if !ok {
		return
	}

	resp, err := s.compositeSvc.Compute(c.Request.Context(), providerID, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSubmission(c *gin.Context) {
	providerID, year, ok := providerYear(c)
	if !ok {
		return
	}

	resp, err := s.compositeSvc.Get(c.Request.Context(), providerID, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSubmissions(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Year string `form:"year"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	year, err := parseYear(query.Year)
	if err != nil {
		AbortWithError(c, newValidationError("year", "invalid_performance_year", "year is required"))
		return
	}

	resp, err := s.compositeSvc.List(c.Request.Context(), compositedomain.ListSubmissionsRequest{
		PerformanceYear: year,
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

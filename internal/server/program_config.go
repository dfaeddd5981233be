package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/meritscore/internal/config"
	programdomain "github.com/smallbiznis/meritscore/internal/programconfig/domain"
)

func (s *Server) GetProgramConfig(c *gin.Context) {
	year, err := parseYear(c.Param("year"))
	if err != nil {
		AbortWithError(c, programdomain.ErrInvalidYear)
		return
	}

	resp, err := s.programSvc.Resolve(c.Request.Context(), year)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpsertProgramConfig(c *gin.Context) {
	year, err := parseYear(c.Param("year"))
	if err != nil {
		AbortWithError(c, programdomain.ErrInvalidYear)
		return
	}

	var rules config.ProgramRules
	if err := c.ShouldBindJSON(&rules); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.programSvc.Upsert(c.Request.Context(), programdomain.UpsertRequest{
		PerformanceYear: year,
		Rules:           rules,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

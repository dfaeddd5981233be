package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	programdomain "github.com/smallbiznis/meritscore/internal/programconfig/domain"
	"github.com/smallbiznis/meritscore/internal/timeline"
)

func (s *Server) GetPhase(c *gin.Context) {
	year, err := parseYear(c.Param("year"))
	if err != nil || !programdomain.ValidYear(year) {
		AbortWithError(c, newValidationError("year", "invalid_performance_year", "invalid performance year"))
		return
	}

	now := s.clock.Now()
	override, err := parseOptionalTime(c.Query("now"))
	if err != nil {
		AbortWithError(c, newValidationError("now", "invalid_now", "now must be RFC3339"))
		return
	}
	if override != nil {
		now = *override
	}

	c.JSON(http.StatusOK, gin.H{"data": timeline.GetPhase(year, now)})
}

package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	providerdomain "github.com/smallbiznis/meritscore/internal/provider/domain"
	"github.com/smallbiznis/meritscore/pkg/db/pagination"
)

type upsertProviderRequest struct {
	NPI           string `json:"npi"`
	Name          string `json:"name"`
	SpecialtyCode string `json:"specialty_code"`
	SpecialtyName string `json:"specialty_name"`
}

func (s *Server) UpsertProvider(c *gin.Context) {
	var req upsertProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.providerSvc.Upsert(c.Request.Context(), providerdomain.UpsertProviderRequest{
		ID:            strings.TrimSpace(c.Param("id")),
		NPI:           strings.TrimSpace(req.NPI),
		Name:          strings.TrimSpace(req.Name),
		SpecialtyCode: strings.TrimSpace(req.SpecialtyCode),
		SpecialtyName: strings.TrimSpace(req.SpecialtyName),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProvider(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, providerdomain.ErrInvalidID)
		return
	}

	resp, err := s.providerSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProviders(c *gin.Context) {
	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.providerSvc.List(c.Request.Context(), providerdomain.ListProviderRequest{Pagination: query})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/meritscore/pkg/db/pagination"
)

type UpsertProviderRequest struct {
	ID            string `json:"-"`
	NPI           string `json:"npi"`
	Name          string `json:"name"`
	SpecialtyCode string `json:"specialty_code"`
	SpecialtyName string `json:"specialty_name"`
}

type ListProviderRequest struct {
	pagination.Pagination
}

type ListProviderResponse struct {
	pagination.PageInfo
	Providers []Provider `json:"providers"`
}

type Service interface {
	Upsert(context.Context, UpsertProviderRequest) (Provider, error)
	GetByID(ctx context.Context, id snowflake.ID) (Provider, error)
	List(context.Context, ListProviderRequest) (ListProviderResponse, error)
}

var (
	ErrInvalidID   = errors.New("invalid_provider")
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidNPI  = errors.New("invalid_npi")
	ErrNotFound    = errors.New("provider_not_found")
)

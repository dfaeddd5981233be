package service

import (
	"context"
	"strings"
	"unicode"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/meritscore/internal/clock"
	"github.com/smallbiznis/meritscore/internal/provider/domain"
	"github.com/smallbiznis/meritscore/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("provider.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertProviderRequest) (domain.Provider, error) {
	id, err := ParseID(req.ID)
	if err != nil {
		return domain.Provider{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Provider{}, domain.ErrInvalidName
	}

	npi := strings.TrimSpace(req.NPI)
	if npi != "" && !validNPI(npi) {
		return domain.Provider{}, domain.ErrInvalidNPI
	}

	now := s.clock.Now().UTC()
	provider := domain.Provider{
		ID:            id,
		NPI:           npi,
		Name:          name,
		SpecialtyCode: strings.TrimSpace(req.SpecialtyCode),
		SpecialtyName: strings.TrimSpace(req.SpecialtyName),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Upsert(ctx, s.db, &provider); err != nil {
		return domain.Provider{}, err
	}

	stored, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Provider{}, err
	}
	if stored == nil {
		return provider, nil
	}
	return *stored, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Provider, error) {
	if id == 0 {
		return domain.Provider{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Provider{}, err
	}
	if item == nil {
		return domain.Provider{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListProviderRequest) (domain.ListProviderResponse, error) {
	afterID, err := req.AfterID()
	if err != nil {
		return domain.ListProviderResponse{}, err
	}
	limit := req.Limit()

	items, err := s.repo.List(ctx, s.db, afterID, limit)
	if err != nil {
		return domain.ListProviderResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPage(items, limit, func(p *domain.Provider) string {
		return p.ID.String()
	})

	providers := make([]domain.Provider, 0, len(items))
	for _, item := range items {
		providers = append(providers, *item)
	}
	return domain.ListProviderResponse{PageInfo: pageInfo, Providers: providers}, nil
}

// ParseID parses a provider id path parameter.
func ParseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

// NPIs are ten digits.
func validNPI(npi string) bool {
	if len(npi) != 10 {
		return false
	}
	for _, r := range npi {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

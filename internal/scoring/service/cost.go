package service

import (
	"context"
	"fmt"
	"math"

	"github.com/bwmarrin/snowflake"
	perfdomain "github.com/smallbiznis/meritscore/internal/performance/domain"
	"github.com/smallbiznis/meritscore/internal/scoring/domain"
	"go.uber.org/zap"
)

type CostScorer struct {
	facts perfdomain.FactReader
	log   *zap.Logger
}

func NewCostScorer(facts perfdomain.FactReader, log *zap.Logger) *CostScorer {
	return &CostScorer{facts: facts, log: log.Named("scoring.cost")}
}

func (s *CostScorer) Category() domain.Category { return domain.CategoryCost }

func (s *CostScorer) Score(ctx context.Context, providerID snowflake.ID, year int) (domain.CategoryResult, error) {
	rows, err := s.facts.CostFacts(ctx, providerID, year)
	if err != nil {
		return domain.CategoryResult{}, fmt.Errorf("cost facts: %w", err)
	}
	if len(rows) == 0 {
		return domain.Unavailable(domain.CategoryCost), domain.ErrDataUnavailable
	}
	return scoreCost(rows), nil
}

func scoreCost(rows []perfdomain.CostPerformance) domain.CategoryResult {
	var sum float64
	for _, r := range rows {
		sum += r.PerformanceScore
	}
	return domain.CategoryResult{
		Category:      domain.CategoryCost,
		Score:         round2(sum / float64(len(rows))),
		DataAvailable: true,
		Facts:         map[string]any{"measures": len(rows)},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

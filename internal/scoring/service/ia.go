package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	perfdomain "github.com/smallbiznis/meritscore/internal/performance/domain"
	"github.com/smallbiznis/meritscore/internal/scoring/domain"
	"go.uber.org/zap"
)

type IAScorer struct {
	facts perfdomain.FactReader
	log   *zap.Logger
}

func NewIAScorer(facts perfdomain.FactReader, log *zap.Logger) *IAScorer {
	return &IAScorer{facts: facts, log: log.Named("scoring.ia")}
}

func (s *IAScorer) Category() domain.Category { return domain.CategoryIA }

func (s *IAScorer) Score(ctx context.Context, providerID snowflake.ID, year int) (domain.CategoryResult, error) {
	facts, err := s.facts.IAFacts(ctx, providerID, year)
	if err != nil {
		return domain.CategoryResult{}, fmt.Errorf("ia facts: %w", err)
	}
	if len(facts) == 0 {
		return domain.Unavailable(domain.CategoryIA), domain.ErrDataUnavailable
	}
	return scoreIA(facts), nil
}

func scoreIA(facts []perfdomain.IAFact) domain.CategoryResult {
	var points float64
	completed := 0
	for _, f := range facts {
		if f.Attestation.Status != perfdomain.ActivityCompleted {
			continue
		}
		completed++
		points += f.Attestation.PointsEarned
	}
	return domain.CategoryResult{
		Category:      domain.CategoryIA,
		Score:         round2(min(100, points/domain.IAPointsTarget*100)),
		DataAvailable: true,
		Facts: map[string]any{
			"completed":     completed,
			"points_earned": points,
			"points_target": domain.IAPointsTarget,
		},
	}
}

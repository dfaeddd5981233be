package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	perfdomain "github.com/smallbiznis/meritscore/internal/performance/domain"
	"github.com/smallbiznis/meritscore/internal/scoring/domain"
	"go.uber.org/zap"
)

type PIScorer struct {
	facts perfdomain.FactReader
	log   *zap.Logger
}

func NewPIScorer(facts perfdomain.FactReader, log *zap.Logger) *PIScorer {
	return &PIScorer{facts: facts, log: log.Named("scoring.pi")}
}

func (s *PIScorer) Category() domain.Category { return domain.CategoryPI }

func (s *PIScorer) Score(ctx context.Context, providerID snowflake.ID, year int) (domain.CategoryResult, error) {
	facts, err := s.facts.PIFacts(ctx, providerID, year)
	if err != nil {
		return domain.CategoryResult{}, fmt.Errorf("pi facts: %w", err)
	}
	reported := 0
	for _, f := range facts {
		if f.Performance != nil {
			reported++
		}
	}
	if reported == 0 {
		return domain.Unavailable(domain.CategoryPI), domain.ErrDataUnavailable
	}
	return scorePI(facts), nil
}

// scorePI is earned over available points for attested measures. Any
// required measure without attested points zeroes the category.
func scorePI(facts []perfdomain.PIFact) domain.CategoryResult {
	result := domain.CategoryResult{
		Category:      domain.CategoryPI,
		DataAvailable: true,
		Facts:         map[string]any{},
	}

	var failedRequired []string
	var earned, available float64
	attested := 0
	for _, f := range facts {
		isAttested := f.Performance != nil && f.Performance.AttestationStatus == perfdomain.AttestationAttested
		if f.Measure.RequiredMeasure && (!isAttested || f.Performance.PointsEarned <= 0) {
			failedRequired = append(failedRequired, f.Measure.Code)
		}
		if !isAttested {
			continue
		}
		attested++
		earned += f.Performance.PointsEarned
		available += f.Measure.MaxPoints
	}

	result.Facts["attested"] = attested
	result.Facts["points_earned"] = earned
	result.Facts["points_available"] = available
	if len(failedRequired) > 0 {
		result.Facts["gate"] = "required_measure_without_points"
		result.Facts["failed_required"] = failedRequired
		return result
	}
	if available <= 0 {
		return result
	}
	result.Score = round2(min(100, earned/available*100))
	return result
}

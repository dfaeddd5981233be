package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	perfdomain "github.com/smallbiznis/meritscore/internal/performance/domain"
	"github.com/smallbiznis/meritscore/internal/scoring/domain"
	"go.uber.org/zap"
)

const (
	bonusThreshold     = 7.0
	outcomeBonus       = 2.0
	highPriorityBonus  = 1.0
	qualityScaleFactor = 10.0
)

type QualityScorer struct {
	facts perfdomain.FactReader
	log   *zap.Logger
}

func NewQualityScorer(facts perfdomain.FactReader, log *zap.Logger) *QualityScorer {
	return &QualityScorer{facts: facts, log: log.Named("scoring.quality")}
}

func (s *QualityScorer) Category() domain.Category { return domain.CategoryQuality }

func (s *QualityScorer) Score(ctx context.Context, providerID snowflake.ID, year int) (domain.CategoryResult, error) {
	facts, err := s.facts.QualityFacts(ctx, providerID, year)
	if err != nil {
		return domain.CategoryResult{}, fmt.Errorf("quality facts: %w", err)
	}

	withData := 0
	for _, f := range facts {
		if f.Performance != nil {
			withData++
		}
	}
	if withData == 0 {
		return domain.Unavailable(domain.CategoryQuality), domain.ErrDataUnavailable
	}
	return scoreQuality(facts), nil
}

// scoreQuality averages the 0-10 scores of qualifying measures, scales to
// 100 and adds outcome/high-priority bonuses. A measure earns at most one bonus.
func scoreQuality(facts []perfdomain.QualityFact) domain.CategoryResult {
	var (
		sum        float64
		qualifying int
		bonus      float64
		excluded   []string
	)
	for _, f := range facts {
		if !f.Performance.Qualifies() {
			excluded = append(excluded, f.Measure.Code)
			continue
		}
		qualifying++
		score := f.Performance.MeasureScore
		sum += score
		if score >= bonusThreshold {
			switch {
			case f.Measure.IsOutcome:
				bonus += outcomeBonus
			case f.Measure.IsHighPriority:
				bonus += highPriorityBonus
			}
		}
	}

	result := domain.CategoryResult{
		Category:      domain.CategoryQuality,
		DataAvailable: true,
		Facts: map[string]any{
			"selected":   len(facts),
			"qualifying": qualifying,
			"excluded":   excluded,
		},
	}
	if qualifying == 0 {
		result.Facts["gate"] = "no_measure_meets_case_minimum_and_completeness"
		return result
	}

	average := sum / float64(qualifying)
	result.Score = round2(min(100, average*qualityScaleFactor+bonus))
	result.Facts["average_measure_score"] = round2(average)
	result.Facts["bonus"] = bonus
	return result
}

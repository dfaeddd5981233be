package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Category string

const (
	CategoryQuality Category = "quality"
	CategoryPI      Category = "pi"
	CategoryIA      Category = "ia"
	CategoryCost    Category = "cost"
)

// Categories lists every scored category in reporting order.
var Categories = []Category{CategoryQuality, CategoryPI, CategoryIA, CategoryCost}

// IAPointsTarget is the improvement-activity credit that earns a full score.
const IAPointsTarget = 40.0

// ErrDataUnavailable marks a category with no facts for the key. Callers
// score it 0 and continue with the remaining categories.
var ErrDataUnavailable = errors.New("data_unavailable")

// CategoryResult is a 0-100 category score plus the facts behind it.
type CategoryResult struct {
	Category      Category       `json:"category"`
	Score         float64        `json:"score"`
	DataAvailable bool           `json:"data_available"`
	Facts         map[string]any `json:"facts,omitempty"`
}

// Unavailable is the result reported alongside ErrDataUnavailable.
func Unavailable(category Category) CategoryResult {
	return CategoryResult{Category: category, Score: 0, DataAvailable: false, Facts: map[string]any{}}
}

//go:generate mockgen -destination=mock/mock_scorer.go -package=mock . CategoryScorer

type CategoryScorer interface {
	Category() Category
	Score(ctx context.Context, providerID snowflake.ID, year int) (CategoryResult, error)
}

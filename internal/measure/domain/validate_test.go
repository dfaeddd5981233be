package domain

import (
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
)

func catalogOf(measures ...QualityMeasure) (map[snowflake.ID]QualityMeasure, []QualityMeasure) {
	byID := make(map[snowflake.ID]QualityMeasure, len(measures))
	offered := make([]QualityMeasure, 0, len(measures))
	for _, m := range measures {
		byID[m.ID] = m
		if m.Active {
			offered = append(offered, m)
		}
	}
	return byID, offered
}

func processMeasures(n int) []QualityMeasure {
	out := make([]QualityMeasure, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, QualityMeasure{ID: snowflake.ID(i), Code: fmt.Sprintf("Q%03d", i), Active: true})
	}
	return out
}

func ids(measures []QualityMeasure) []snowflake.ID {
	out := make([]snowflake.ID, 0, len(measures))
	for _, m := range measures {
		out = append(out, m.ID)
	}
	return out
}

func TestValidateSelectionExactlySixWithoutOutcomeOrHighPriority(t *testing.T) {
	measures := processMeasures(6)
	catalog, offered := catalogOf(measures...)

	result := ValidateSelection(ids(measures), catalog, offered, "")
	assert.True(t, result.Valid)
	assert.Empty(t, result.Violations)
	assert.NotEmpty(t, result.Advisories)
	assert.Equal(t, 6, result.SelectedCount)
}

func TestValidateSelectionTooFew(t *testing.T) {
	measures := processMeasures(5)
	catalog, offered := catalogOf(measures...)

	result := ValidateSelection(ids(measures), catalog, offered, "")
	assert.False(t, result.Valid)
	assert.Contains(t, result.Violations, "at least 6 quality measures required, got 5")
}

func TestValidateSelectionDuplicatesDoNotCount(t *testing.T) {
	measures := processMeasures(5)
	catalog, offered := catalogOf(measures...)
	candidates := append(ids(measures), measures[0].ID)

	result := ValidateSelection(candidates, catalog, offered, "")
	assert.False(t, result.Valid)
	assert.Contains(t, result.Violations, "duplicate measure Q001")
	assert.Equal(t, 5, result.SelectedCount)
}

func TestValidateSelectionUnknownAndInactive(t *testing.T) {
	measures := processMeasures(6)
	measures[5].Active = false
	catalog, offered := catalogOf(measures...)
	candidates := append(ids(measures), snowflake.ID(999))

	result := ValidateSelection(candidates, catalog, offered, "")
	assert.False(t, result.Valid)
	assert.Contains(t, result.Violations, "unknown measure 999")
	assert.Contains(t, result.Violations, "measure Q006 is inactive")
}

func TestValidateSelectionOutcomeAdvisoryOnlyWhenAvailable(t *testing.T) {
	measures := processMeasures(6)
	measures[0].IsHighPriority = true
	catalog, offered := catalogOf(measures...)

	result := ValidateSelection(ids(measures), catalog, offered, "cardiology")
	assert.True(t, result.Valid)
	assert.Empty(t, result.Advisories)

	outcome := QualityMeasure{ID: 50, Code: "Q050", IsOutcome: true, Active: true}
	catalog, offered = catalogOf(append(measures, outcome)...)
	result = ValidateSelection(ids(measures), catalog, offered, "cardiology")
	assert.True(t, result.Valid)
	assert.Equal(t, []string{"no outcome measure selected; 1 outcome measures are available for cardiology"}, result.Advisories)
	assert.Equal(t, 1, result.OutcomeAvailable)
	assert.Equal(t, 0, result.OutcomeSelected)
	assert.Equal(t, 1, result.HighPrioritySelected)
}

func TestQualityMeasureAppliesTo(t *testing.T) {
	m := QualityMeasure{SpecialtyCodes: []string{"cardiology"}}
	assert.True(t, m.AppliesTo("cardiology"))
	assert.False(t, m.AppliesTo("dermatology"))
	assert.True(t, m.AppliesTo(""))
	assert.True(t, QualityMeasure{}.AppliesTo("dermatology"))
}

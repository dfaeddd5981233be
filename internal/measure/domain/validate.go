package domain

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

const MinimumSelectedMeasures = 6

// ValidationResult is returned for both valid and invalid selections; an
// invalid set is an expected outcome, not an error.
type ValidationResult struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations"`
	Advisories []string `json:"advisories"`

	SelectedCount         int `json:"selected_count"`
	OutcomeAvailable      int `json:"outcome_available"`
	OutcomeSelected       int `json:"outcome_selected"`
	HighPriorityAvailable int `json:"high_priority_available"`
	HighPrioritySelected  int `json:"high_priority_selected"`
}

// ValidateSelection checks candidates against the catalog. catalog holds
// every known measure by id; offered is the active set for the specialty.
func ValidateSelection(candidates []snowflake.ID, catalog map[snowflake.ID]QualityMeasure, offered []QualityMeasure, specialty string) ValidationResult {
	result := ValidationResult{Violations: []string{}, Advisories: []string{}}

	for _, m := range offered {
		if m.IsOutcome {
			result.OutcomeAvailable++
		}
		if m.IsHighPriority {
			result.HighPriorityAvailable++
		}
	}

	seen := make(map[snowflake.ID]struct{}, len(candidates))
	for _, id := range candidates {
		m, ok := catalog[id]
		if !ok {
			result.Violations = append(result.Violations, fmt.Sprintf("unknown measure %s", id))
			continue
		}
		if _, dup := seen[id]; dup {
			result.Violations = append(result.Violations, fmt.Sprintf("duplicate measure %s", m.Code))
			continue
		}
		seen[id] = struct{}{}
		if !m.Active {
			result.Violations = append(result.Violations, fmt.Sprintf("measure %s is inactive", m.Code))
			continue
		}

		result.SelectedCount++
		if m.IsOutcome {
			result.OutcomeSelected++
		}
		if m.IsHighPriority {
			result.HighPrioritySelected++
		}
	}

	if result.SelectedCount < MinimumSelectedMeasures {
		result.Violations = append(result.Violations,
			fmt.Sprintf("at least %d quality measures required, got %d", MinimumSelectedMeasures, result.SelectedCount))
	}

	if result.OutcomeSelected == 0 && result.OutcomeAvailable > 0 {
		msg := fmt.Sprintf("no outcome measure selected; %d outcome measures are available", result.OutcomeAvailable)
		if specialty != "" {
			msg += " for " + specialty
		}
		result.Advisories = append(result.Advisories, msg)
	}
	if result.HighPrioritySelected == 0 {
		result.Advisories = append(result.Advisories, "no high-priority measure selected")
	}

	result.Valid = len(result.Violations) == 0
	return result
}

package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetPhase(t *testing.T) {
	cases := []struct {
		name  string
		now   time.Time
		phase PhaseName
		days  int
	}{
		{"mid_year", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), PhasePerformance, 31},
		{"last_day_partial", time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), PhasePerformance, 1},
		{"new_year", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), PhaseSubmission, 90},
		{"submission_noon", time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC), PhaseSubmission, 1},
		{"after_deadline", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), PhaseCompleted, 0},
		{"years_later", time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC), PhaseCompleted, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := GetPhase(2024, tc.now)
			assert.Equal(t, tc.phase, got.Phase)
			assert.Equal(t, tc.days, got.DaysRemaining)
			assert.Equal(t, 2024, got.PerformanceYear)
		})
	}
}

func TestGetPhaseNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 2024-12-31 20:00 local is 2025-01-01 01:00 UTC.
	got := GetPhase(2024, time.Date(2024, 12, 31, 20, 0, 0, 0, loc))
	assert.Equal(t, PhaseSubmission, got.Phase)
	assert.Equal(t, SubmissionEnd(2024), got.PhaseEndsAt)
}

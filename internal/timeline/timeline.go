// Package timeline reports where a performance year stands in the program calendar.
package timeline

import (
	"math"
	"time"
)

type PhaseName string

const (
	PhasePerformance PhaseName = "performance_period"
	PhaseSubmission  PhaseName = "submission_period"
	PhaseCompleted   PhaseName = "completed"
)

type Phase struct {
	PerformanceYear int       `json:"performance_year"`
	Phase           PhaseName `json:"phase"`
	DaysRemaining   int       `json:"days_remaining"`
	PhaseEndsAt     time.Time `json:"phase_ends_at"`
}

// PerformanceEnd is the instant after Dec 31 of the performance year.
func PerformanceEnd(year int) time.Time {
	return time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// SubmissionEnd is the instant after Mar 31 of the following year.
func SubmissionEnd(year int) time.Time {
	return time.Date(year+1, time.April, 1, 0, 0, 0, 0, time.UTC)
}

// GetPhase classifies now against the year's calendar. Partial days count
// as a full day remaining.
func GetPhase(year int, now time.Time) Phase {
	now = now.UTC()
	switch {
	case now.Before(PerformanceEnd(year)):
		end := PerformanceEnd(year)
		return Phase{PerformanceYear: year, Phase: PhasePerformance, DaysRemaining: daysUntil(now, end), PhaseEndsAt: end}
	case now.Before(SubmissionEnd(year)):
		end := SubmissionEnd(year)
		return Phase{PerformanceYear: year, Phase: PhaseSubmission, DaysRemaining: daysUntil(now, end), PhaseEndsAt: end}
	default:
		return Phase{PerformanceYear: year, Phase: PhaseCompleted, DaysRemaining: 0, PhaseEndsAt: SubmissionEnd(year)}
	}
}

func daysUntil(now, end time.Time) int {
	return int(math.Ceil(end.Sub(now).Hours() / 24))
}

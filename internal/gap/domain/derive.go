package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/gosimple/slug"
	perfdomain "github.com/smallbiznis/meritscore/internal/performance/domain"
)

// IAPointsRequired is the improvement-activity credit needed for full IA marks.
const IAPointsRequired = 40.0

func yearEnd(year int) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// dataCutoff is the last day to reconcile quality data completeness.
func dataCutoff(year int) time.Time {
	return time.Date(year, time.September, 30, 0, 0, 0, 0, time.UTC)
}

// lastActivityStart is the latest start date for a 90-day activity to finish in the year.
func lastActivityStart(year int) time.Time {
	return time.Date(year, time.October, 2, 0, 0, 0, 0, time.UTC)
}

// Facts is everything gap derivation reads for one provider-year.
type Facts struct {
	Quality []perfdomain.QualityFact
	PI      []perfdomain.PIFact
	IA      []perfdomain.IAFact
}

// Key builds the stable identity of a gap within a provider-year.
func Key(category Category, gapType GapType, measureCode string) string {
	if measureCode == "" {
		return slug.Make(fmt.Sprintf("%s-%s", category, gapType))
	}
	return slug.Make(fmt.Sprintf("%s-%s-%s", category, gapType, measureCode))
}

// Derive computes the gap set for a provider-year. IDs and timestamps are
// left to the caller. Output order is deterministic.
func Derive(year int, facts Facts) []DataGap {
	var gaps []DataGap
	add := func(g DataGap) {
		g.PerformanceYear = year
		g.GapKey = Key(g.Category, g.GapType, g.MeasureCode)
		gaps = append(gaps, g)
	}

	for _, f := range facts.Quality {
		var denominator int64
		var completeness float64
		if f.Performance != nil {
			denominator = f.Performance.Denominator
			completeness = f.Performance.CompletenessPercent
		}
		measureID := f.Measure.ID
		if denominator < f.Measure.MinimumCases {
			add(DataGap{
				Category:    CategoryQuality,
				GapType:     GapInsufficientVolume,
				MeasureID:   &measureID,
				MeasureCode: f.Measure.Code,
				Description: fmt.Sprintf("%s has %d eligible cases, %d required", f.Measure.Code, denominator, f.Measure.MinimumCases),
				ImpactLevel: ImpactHigh,
				Remediation: "Report additional eligible encounters or replace the measure with one that has sufficient volume.",
				DueDate:     yearEnd(year),
			})
		}
		if completeness < f.Selection.ExpectedCompleteness {
			add(DataGap{
				Category:    CategoryQuality,
				GapType:     GapIncompleteData,
				MeasureID:   &measureID,
				MeasureCode: f.Measure.Code,
				Description: fmt.Sprintf("%s data completeness %.2f%% is below the expected %.2f%%", f.Measure.Code, completeness, f.Selection.ExpectedCompleteness),
				ImpactLevel: ImpactMedium,
				Remediation: "Reconcile missing numerator and denominator data before the data cutoff.",
				DueDate:     dataCutoff(year),
			})
		}
	}

	for _, f := range facts.PI {
		measureID := f.Measure.ID
		status := perfdomain.AttestationNotStarted
		if f.Performance != nil {
			status = f.Performance.AttestationStatus
		}
		if status != perfdomain.AttestationAttested {
			impact := ImpactMedium
			if f.Measure.RequiredMeasure {
				impact = ImpactCritical
			}
			add(DataGap{
				Category:    CategoryPI,
				GapType:     GapMissingData,
				MeasureID:   &measureID,
				MeasureCode: f.Measure.Code,
				Description: fmt.Sprintf("%s attestation is %s", f.Measure.Code, status),
				ImpactLevel: impact,
				Remediation: "Complete the measure and record the attestation.",
				DueDate:     yearEnd(year),
			})
			continue
		}
		if f.Measure.PerformanceThreshold > 0 && f.Performance.PerformanceRate < f.Measure.PerformanceThreshold {
			add(DataGap{
				Category:    CategoryPI,
				GapType:     GapInsufficientPerformance,
				MeasureID:   &measureID,
				MeasureCode: f.Measure.Code,
				Description: fmt.Sprintf("%s performance rate %.2f%% is below the %.2f%% threshold", f.Measure.Code, f.Performance.PerformanceRate, f.Measure.PerformanceThreshold),
				ImpactLevel: ImpactMedium,
				Remediation: "Improve workflow capture for the measure to raise its performance rate.",
				DueDate:     yearEnd(year),
			})
		}
	}

	var iaPoints float64
	for _, f := range facts.IA {
		if f.Attestation.Status == perfdomain.ActivityCompleted {
			iaPoints += f.Attestation.PointsEarned
		}
	}
	if iaPoints < IAPointsRequired {
		add(DataGap{
			Category:    CategoryIA,
			GapType:     GapInsufficientPoints,
			Description: fmt.Sprintf("%.0f of %.0f improvement activity points completed, %.0f short", iaPoints, IAPointsRequired, IAPointsRequired-iaPoints),
			ImpactLevel: ImpactHigh,
			Remediation: "Start additional improvement activities; a 90-day activity must begin by October 2.",
			DueDate:     lastActivityStart(year),
		})
	}

	Sort(gaps)
	return gaps
}

// Sort orders gaps by impact, then category, then key.
func Sort(gaps []DataGap) {
	sort.SliceStable(gaps, func(i, j int) bool {
		a, b := gaps[i], gaps[j]
		if a.ImpactLevel.rank() != b.ImpactLevel.rank() {
			return a.ImpactLevel.rank() < b.ImpactLevel.rank()
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.GapKey < b.GapKey
	})
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	compositedomain "github.com/smallbiznis/meritscore/internal/composite/domain"
	gapdomain "github.com/smallbiznis/meritscore/internal/gap/domain"
	measuredomain "github.com/smallbiznis/meritscore/internal/measure/domain"
	scoringdomain "github.com/smallbiznis/meritscore/internal/scoring/domain"
	"github.com/smallbiznis/meritscore/internal/timeline"
)

type printStyles struct {
	header   lipgloss.Style
	label    lipgloss.Style
	good     lipgloss.Style
	warn     lipgloss.Style
	bad      lipgloss.Style
	dim      lipgloss.Style
	critical lipgloss.Style
}

func newPrintStyles() printStyles {
	return printStyles{
		header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label:    lipgloss.NewStyle().Width(22),
		good:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		warn:     lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		bad:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		critical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderPhase(w io.Writer, phase timeline.Phase) {
	st := newPrintStyles()
	style := st.good
	switch phase.Phase {
	case timeline.PhaseSubmission:
		style = st.warn
	case timeline.PhaseCompleted:
		style = st.dim
	}

	fmt.Fprintln(w, st.header.Render(fmt.Sprintf("Performance year %d", phase.PerformanceYear)))
	fmt.Fprintf(w, "%s%s\n", st.label.Render("phase"), style.Render(string(phase.Phase)))
	fmt.Fprintf(w, "%s%s\n", st.label.Render("ends"), phase.PhaseEndsAt.Format("2006-01-02"))
	fmt.Fprintf(w, "%s%d\n", st.label.Render("days remaining"), phase.DaysRemaining)
}

func renderSubmission(w io.Writer, sub compositedomain.Submission) {
	st := newPrintStyles()
	fmt.Fprintln(w, st.header.Render(fmt.Sprintf("Provider %s, performance year %d", sub.ProviderID, sub.PerformanceYear)))

	rows := []struct {
		category scoringdomain.Category
		score    float64
		weight   float64
	}{
		{scoringdomain.CategoryQuality, sub.QualityScore, sub.QualityWeight},
		{scoringdomain.CategoryPI, sub.PIScore, sub.PIWeight},
		{scoringdomain.CategoryIA, sub.IAScore, sub.IAWeight},
		{scoringdomain.CategoryCost, sub.CostScore, sub.CostWeight},
	}
	for _, row := range rows {
		value := fmt.Sprintf("%6.2f  x %.2f", row.score, row.weight)
		if !categoryAvailable(sub, row.category) {
			value += "  " + st.dim.Render("(no data)")
		}
		fmt.Fprintf(w, "%s%s\n", st.label.Render(string(row.category)), value)
	}

	scoreStyle := st.good
	if sub.CompositeScore < sub.PerformanceThreshold {
		scoreStyle = st.bad
	}
	adjStyle := st.good
	if sub.PaymentAdjustment < 0 {
		adjStyle = st.bad
	}
	fmt.Fprintf(w, "%s%s  %s\n", st.label.Render("composite"),
		scoreStyle.Render(fmt.Sprintf("%.2f", sub.CompositeScore)),
		st.dim.Render(fmt.Sprintf("threshold %.2f", sub.PerformanceThreshold)))
	fmt.Fprintf(w, "%s%s\n", st.label.Render("payment adjustment"),
		adjStyle.Render(fmt.Sprintf("%+.2f%%", sub.PaymentAdjustment)))
	fmt.Fprintf(w, "%s%s\n", st.label.Render("config source"), sub.ConfigSource)
}

func categoryAvailable(sub compositedomain.Submission, category scoringdomain.Category) bool {
	facts, ok := sub.CategoryFacts[string(category)].(map[string]any)
	if !ok {
		return true
	}
	available, ok := facts["data_available"].(bool)
	return !ok || available
}

func renderGaps(w io.Writer, gaps []gapdomain.DataGap) {
	st := newPrintStyles()
	if len(gaps) == 0 {
		fmt.Fprintln(w, st.good.Render("No data gaps."))
		return
	}
	fmt.Fprintln(w, st.header.Render(fmt.Sprintf("%d data gaps", len(gaps))))
	for _, gap := range gaps {
		impact := st.dim
		switch gap.ImpactLevel {
		case gapdomain.ImpactCritical:
			impact = st.critical
		case gapdomain.ImpactHigh:
			impact = st.bad
		case gapdomain.ImpactMedium:
			impact = st.warn
		}
		fmt.Fprintf(w, "%s %-40s %s\n",
			impact.Width(9).Render(string(gap.ImpactLevel)),
			gap.GapKey,
			gap.Description,
		)
		fmt.Fprintf(w, "          %s\n", st.dim.Render(fmt.Sprintf("due %s: %s", gap.DueDate.Format("2006-01-02"), gap.Remediation)))
	}
}

func renderImport(w io.Writer, paths []string, result measuredomain.ImportResult, dryRun bool) {
	st := newPrintStyles()
	verb := "Imported"
	if dryRun {
		verb = "Parsed (dry run)"
	}
	fmt.Fprintln(w, st.header.Render(fmt.Sprintf("%s %d catalog files", verb, len(paths))))
	if len(paths) > 0 {
		fmt.Fprintln(w, st.dim.Render(strings.Join(paths, "\n")))
	}
	fmt.Fprintf(w, "%s%d\n", st.label.Render("quality measures"), result.QualityMeasures)
	fmt.Fprintf(w, "%s%d\n", st.label.Render("pi measures"), result.PIMeasures)
	fmt.Fprintf(w, "%s%d\n", st.label.Render("improvement activities"), result.Activities)
}

func renderBatch(w io.Writer, year int, result compositedomain.BatchResult) {
	st := newPrintStyles()
	fmt.Fprintln(w, st.header.Render(fmt.Sprintf("Recomputed performance year %d (run %s)", year, result.RunID)))
	fmt.Fprintf(w, "%s%s\n", st.label.Render("computed"), st.good.Render(fmt.Sprintf("%d", result.Computed)))
	if len(result.Failed) == 0 {
		return
	}
	fmt.Fprintf(w, "%s%s\n", st.label.Render("failed"), st.bad.Render(fmt.Sprintf("%d", len(result.Failed))))
	for providerID, reason := range result.Failed {
		fmt.Fprintf(w, "  %s %s\n", providerID, st.dim.Render(reason))
	}
}

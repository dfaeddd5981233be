package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	compositedomain "github.com/smallbiznis/meritscore/internal/composite/domain"
	gapdomain "github.com/smallbiznis/meritscore/internal/gap/domain"
	"github.com/smallbiznis/meritscore/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		outputFormat = formatConsole
		phaseYear, phaseNow = 0, ""
		catalogGlob, catalogDryRun = "catalogs/**/*.yml", false
		rootCmd.PersistentFlags().Set("format", formatConsole)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"catalog", "phase", "score", "gaps", "recompute", "migrate"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestPhaseCommandJSON(t *testing.T) {
	out, err := execute(t, "phase", "--year", "2024", "--now", "2025-01-01T00:00:00Z", "--format", "json")
	require.NoError(t, err)

	var phase timeline.Phase
	require.NoError(t, json.Unmarshal([]byte(out), &phase))
	assert.Equal(t, timeline.PhaseSubmission, phase.Phase)
	assert.Equal(t, 90, phase.DaysRemaining)
	assert.Equal(t, 2024, phase.PerformanceYear)
}

func TestPhaseCommandRejectsBadNow(t *testing.T) {
	_, err := execute(t, "phase", "--now", "tomorrow")
	assert.ErrorContains(t, err, "RFC3339")
}

func TestUnknownFormat(t *testing.T) {
	_, err := execute(t, "phase", "--format", "xml")
	assert.ErrorContains(t, err, `unknown format "xml"`)
}

func TestCatalogImportDryRun(t *testing.T) {
	dir := t.TempDir()
	body := "quality_measures:\n  - code: \"236\"\n    title: Controlling High Blood Pressure\nimprovement_activities:\n  - code: IA_BE_4\n    title: Portal engagement\n    weight: medium\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.yml"), []byte(body), 0o600))

	out, err := execute(t, "catalog", "import", "--glob", filepath.Join(dir, "*.yml"), "--dry-run", "--format", "json")
	require.NoError(t, err)

	var payload struct {
		Files  []string `json:"files"`
		DryRun bool     `json:"dry_run"`
		Result struct {
			QualityMeasures int `json:"quality_measures"`
			Activities      int `json:"improvement_activities"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.True(t, payload.DryRun)
	assert.Len(t, payload.Files, 1)
	assert.Equal(t, 1, payload.Result.QualityMeasures)
	assert.Equal(t, 1, payload.Result.Activities)
}

func TestScoreRequiresValidProvider(t *testing.T) {
	_, err := execute(t, "score", "--provider", "abc", "--year", "2024")
	assert.ErrorContains(t, err, `--provider "abc"`)
}

func TestRenderSubmissionMarksMissingCategories(t *testing.T) {
	var out bytes.Buffer
	renderSubmission(&out, compositedomain.Submission{
		ProviderID:           snowflake.ID(42),
		PerformanceYear:      2024,
		QualityScore:         80,
		QualityWeight:        0.45,
		CompositeScore:       36,
		PaymentAdjustment:    -4.68,
		PerformanceThreshold: 75,
		ConfigSource:         "default",
		CategoryFacts: datatypes.JSONMap{
			"quality": map[string]any{"data_available": true},
			"cost":    map[string]any{"data_available": false},
		},
	})

	text := out.String()
	assert.Contains(t, text, "Provider 42, performance year 2024")
	assert.Contains(t, text, "-4.68%")
	assert.Contains(t, text, "(no data)")
	assert.Contains(t, text, "threshold 75.00")
}

func TestRenderGaps(t *testing.T) {
	var out bytes.Buffer
	renderGaps(&out, nil)
	assert.Contains(t, out.String(), "No data gaps.")

	out.Reset()
	renderGaps(&out, []gapdomain.DataGap{{
		GapKey:      "pi-missing-data-pi-ep-1",
		ImpactLevel: gapdomain.ImpactCritical,
		Description: "required PI measure PI_EP_1 not attested",
		Remediation: "attest the measure",
		DueDate:     time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}})
	text := out.String()
	assert.Contains(t, text, "1 data gaps")
	assert.Contains(t, text, "pi-missing-data-pi-ep-1")
	assert.Contains(t, text, "due 2024-12-31")
}

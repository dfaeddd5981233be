package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultProgramRulesAreValid(t *testing.T) {
	rules := DefaultProgramRules()
	assert.NoError(t, rules.Validate())
	assert.InDelta(t, 1.0, rules.QualityWeight+rules.PIWeight+rules.IAWeight+rules.CostWeight, 1e-9)
}

func TestProgramRulesValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ProgramRules)
	}{
		{"weights_do_not_sum", func(r *ProgramRules) { r.CostWeight = 0.5 }},
		{"negative_weight", func(r *ProgramRules) { r.QualityWeight = -0.1; r.CostWeight = 0.7 }},
		{"threshold_zero", func(r *ProgramRules) { r.PerformanceThreshold = 0 }},
		{"threshold_hundred", func(r *ProgramRules) { r.PerformanceThreshold = 100 }},
		{"positive_negative_bound", func(r *ProgramRules) { r.MaxNegativeAdjustment = 2 }},
		{"negative_ceiling", func(r *ProgramRules) { r.LowVolumeChargesCeiling = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rules := DefaultProgramRules()
			tc.mutate(&rules)
			assert.Error(t, rules.Validate())
		})
	}
}

func TestNewProgramHolderReadsYearOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "program.yml")
	content := `program:
  defaults:
    performanceThreshold: 75
  years:
    "2024":
      qualityWeight: 0.30
      piWeight: 0.25
      iaWeight: 0.15
      costWeight: 0.30
      performanceThreshold: 80
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	holder, err := NewProgramHolder(Config{ProgramConfigPath: path}, zap.NewNop())
	require.NoError(t, err)

	rules, ok := holder.ForYear(2024)
	require.True(t, ok)
	assert.Equal(t, 0.30, rules.QualityWeight)
	assert.Equal(t, 80.0, rules.PerformanceThreshold)
	assert.Equal(t, 9.0, rules.MaxPositiveAdjustment)
	assert.Equal(t, int64(200), rules.PatientVolumeThreshold)

	_, ok = holder.ForYear(2025)
	assert.False(t, ok)
	assert.Equal(t, DefaultProgramRules(), holder.Defaults())
}

func TestNewProgramHolderMissingFileUsesDefaults(t *testing.T) {
	holder, err := NewProgramHolder(Config{ProgramConfigPath: filepath.Join(t.TempDir(), "absent.yml")}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultProgramRules(), holder.Defaults())
	assert.Empty(t, holder.Source())
}

func TestNewProgramHolderKeepsExplicitZeros(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.yml")
	content := `program:
  years:
    "2024":
      maxPositiveAdjustment: 0
      lowVolumeChargesCeiling: 0
      qualityWeight: 0.60
      piWeight: 0.25
      iaWeight: 0.15
      costWeight: 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	holder, err := NewProgramHolder(Config{ProgramConfigPath: path}, zap.NewNop())
	require.NoError(t, err)

	rules, ok := holder.ForYear(2024)
	require.True(t, ok)
	assert.Equal(t, 0.0, rules.MaxPositiveAdjustment)
	assert.Equal(t, 0.0, rules.LowVolumeChargesCeiling)
	assert.Equal(t, 0.0, rules.CostWeight)
	assert.Equal(t, 0.60, rules.QualityWeight)
	assert.Equal(t, -9.0, rules.MaxNegativeAdjustment)
	assert.Equal(t, int64(200), rules.LowVolumePatientCeiling)
	assert.NoError(t, rules.Validate())
}

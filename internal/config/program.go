package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ProgramRules are the year-scoped program parameters used by eligibility and scoring.
type ProgramRules struct {
	QualityWeight float64 `json:"quality_weight"`
	PIWeight      float64 `json:"pi_weight"`
	IAWeight      float64 `json:"ia_weight"`
	CostWeight    float64 `json:"cost_weight"`

	PerformanceThreshold  float64 `json:"performance_threshold"`
	MaxPositiveAdjustment float64 `json:"max_positive_adjustment"`
	MaxNegativeAdjustment float64 `json:"max_negative_adjustment"`

	VolumePercentThreshold  float64 `json:"volume_percent_threshold"`
	PatientVolumeThreshold  int64   `json:"patient_volume_threshold"`
	AllowedChargesThreshold float64 `json:"allowed_charges_threshold"`
	LowVolumePatientCeiling int64   `json:"low_volume_patient_ceiling"`
	LowVolumeChargesCeiling float64 `json:"low_volume_charges_ceiling"`
}

// DefaultProgramRules returns the documented built-in program parameters.
func DefaultProgramRules() ProgramRules {
	return ProgramRules{
		QualityWeight:           0.45,
		PIWeight:                0.25,
		IAWeight:                0.15,
		CostWeight:              0.15,
		PerformanceThreshold:    75,
		MaxPositiveAdjustment:   9.0,
		MaxNegativeAdjustment:   -9.0,
		VolumePercentThreshold:  75,
		PatientVolumeThreshold:  200,
		AllowedChargesThreshold: 90_000,
		LowVolumePatientCeiling: 200,
		LowVolumeChargesCeiling: 90_000,
	}
}

const weightTolerance = 1e-6

// Validate reports the first rule violation, if any.
func (r ProgramRules) Validate() error {
	weights := []float64{r.QualityWeight, r.PIWeight, r.IAWeight, r.CostWeight}
	sum := 0.0
	for _, w := range weights {
		if w < 0 || w > 1 {
			return fmt.Errorf("category weight %.4f outside [0,1]", w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("category weights sum to %.4f, expected 1.0", sum)
	}
	if r.PerformanceThreshold <= 0 || r.PerformanceThreshold >= 100 {
		return fmt.Errorf("performance threshold %.2f outside (0,100)", r.PerformanceThreshold)
	}
	if r.MaxPositiveAdjustment < 0 {
		return errors.New("max positive adjustment must not be negative")
	}
	if r.MaxNegativeAdjustment > 0 {
		return errors.New("max negative adjustment must not be positive")
	}
	if r.VolumePercentThreshold < 0 || r.VolumePercentThreshold > 100 {
		return fmt.Errorf("volume percent threshold %.2f outside [0,100]", r.VolumePercentThreshold)
	}
	if r.PatientVolumeThreshold < 0 || r.AllowedChargesThreshold < 0 ||
		r.LowVolumePatientCeiling < 0 || r.LowVolumeChargesCeiling < 0 {
		return errors.New("eligibility thresholds must not be negative")
	}
	return nil
}

// programRulesEntry is one rules block as written in program.yml. Nil fields
// inherit; explicit zeros are kept.
type programRulesEntry struct {
	QualityWeight *float64 `mapstructure:"qualityWeight"`
	PIWeight      *float64 `mapstructure:"piWeight"`
	IAWeight      *float64 `mapstructure:"iaWeight"`
	CostWeight    *float64 `mapstructure:"costWeight"`

	PerformanceThreshold  *float64 `mapstructure:"performanceThreshold"`
	MaxPositiveAdjustment *float64 `mapstructure:"maxPositiveAdjustment"`
	MaxNegativeAdjustment *float64 `mapstructure:"maxNegativeAdjustment"`

	VolumePercentThreshold  *float64 `mapstructure:"volumePercentThreshold"`
	PatientVolumeThreshold  *int64   `mapstructure:"patientVolumeThreshold"`
	AllowedChargesThreshold *float64 `mapstructure:"allowedChargesThreshold"`
	LowVolumePatientCeiling *int64   `mapstructure:"lowVolumePatientCeiling"`
	LowVolumeChargesCeiling *float64 `mapstructure:"lowVolumeChargesCeiling"`
}

type programFileEntry struct {
	Defaults programRulesEntry            `mapstructure:"defaults"`
	Years    map[string]programRulesEntry `mapstructure:"years"`
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// over applies the fields present in e on top of base.
func (e programRulesEntry) over(base ProgramRules) ProgramRules {
	r := base
	setIf(&r.QualityWeight, e.QualityWeight)
	setIf(&r.PIWeight, e.PIWeight)
	setIf(&r.IAWeight, e.IAWeight)
	setIf(&r.CostWeight, e.CostWeight)
	setIf(&r.PerformanceThreshold, e.PerformanceThreshold)
	setIf(&r.MaxPositiveAdjustment, e.MaxPositiveAdjustment)
	setIf(&r.MaxNegativeAdjustment, e.MaxNegativeAdjustment)
	setIf(&r.VolumePercentThreshold, e.VolumePercentThreshold)
	setIf(&r.PatientVolumeThreshold, e.PatientVolumeThreshold)
	setIf(&r.AllowedChargesThreshold, e.AllowedChargesThreshold)
	setIf(&r.LowVolumePatientCeiling, e.LowVolumePatientCeiling)
	setIf(&r.LowVolumeChargesCeiling, e.LowVolumeChargesCeiling)
	return r
}

// ProgramFile is the parsed program.yml document.
type ProgramFile struct {
	Defaults ProgramRules
	Years    map[string]ProgramRules
}

// ProgramHolder keeps the latest valid program file, reloaded on change.
type ProgramHolder struct {
	current atomic.Value // holds ProgramFile
	source  string
}

// NewProgramHolder loads program.yml when present. A missing file is not an
// error: the holder then serves built-in defaults only.
func NewProgramHolder(cfg Config, log *zap.Logger) (*ProgramHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("program.config")

	v := viper.New()
	if cfg.ProgramConfigPath != "" {
		v.SetConfigFile(cfg.ProgramConfigPath)
	} else {
		v.SetConfigName("program")
		v.SetConfigType("yml")
		v.AddConfigPath("/var/lib/meritscore/config")
		v.AddConfigPath("/etc/meritscore")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MERITSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &ProgramHolder{}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfg.ProgramConfigPath == "" {
			return nil, err
		}
		if cfg.ProgramConfigPath != "" && !errors.As(err, &notFound) {
			log.Warn("program config unreadable, using built-in defaults",
				zap.String("path", cfg.ProgramConfigPath),
				zap.Error(err),
			)
		}
		holder.current.Store(ProgramFile{Defaults: DefaultProgramRules()})
		return holder, nil
	}

	file, err := decodeProgramFile(v)
	if err != nil {
		return nil, err
	}
	holder.source = v.ConfigFileUsed()
	holder.current.Store(file)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeProgramFile(v)
		if err != nil {
			log.Warn("program config reload rejected", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("program config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewStaticProgramHolder serves a fixed program file; used by tests and the CLI.
func NewStaticProgramHolder(file ProgramFile) *ProgramHolder {
	if file.Defaults == (ProgramRules{}) {
		file.Defaults = DefaultProgramRules()
	}
	holder := &ProgramHolder{source: "static"}
	holder.current.Store(file)
	return holder
}

func decodeProgramFile(v *viper.Viper) (ProgramFile, error) {
	var raw programFileEntry
	if err := v.UnmarshalKey("program", &raw); err != nil {
		return ProgramFile{}, err
	}
	file := ProgramFile{
		Defaults: raw.Defaults.over(DefaultProgramRules()),
		Years:    make(map[string]ProgramRules, len(raw.Years)),
	}
	if err := file.Defaults.Validate(); err != nil {
		return ProgramFile{}, fmt.Errorf("program.defaults: %w", err)
	}
	for year, entry := range raw.Years {
		if _, err := strconv.Atoi(year); err != nil {
			return ProgramFile{}, fmt.Errorf("program.years: invalid year key %q", year)
		}
		file.Years[year] = entry.over(file.Defaults)
	}
	return file, nil
}

func (h *ProgramHolder) Get() ProgramFile {
	return h.current.Load().(ProgramFile)
}

// Source returns the file backing the holder, empty when built-in defaults are used.
func (h *ProgramHolder) Source() string {
	return h.source
}

// ForYear returns the file-level rules for a year, if the file declares them.
func (h *ProgramHolder) ForYear(year int) (ProgramRules, bool) {
	file := h.Get()
	rules, ok := file.Years[strconv.Itoa(year)]
	return rules, ok
}

// Defaults returns the file defaults merged over the built-in defaults.
func (h *ProgramHolder) Defaults() ProgramRules {
	return h.Get().Defaults
}

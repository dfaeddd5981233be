package domain

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/meritscore/internal/config"
)

const ReasonMissingTotalVolume = "eligibility cannot be determined, missing total patient volume"

// Determination is the outcome of applying program thresholds to volume facts.
type Determination struct {
	Status        Status
	Reason        string
	InvalidInput  bool
	VolumePercent float64
	PatientVolume int64
}

// Determine classifies a provider. Bad inputs produce a not_eligible result
// flagged as invalid input instead of an error.
func Determine(facts VolumeFacts, rules config.ProgramRules) Determination {
	patientVolume := facts.ProgramPatients

	switch {
	case facts.TotalPatients < 0 || facts.ProgramPatients < 0 || facts.AllowedCharges < 0:
		return Determination{
			Status:       StatusNotEligible,
			Reason:       "invalid input: patient counts and allowed charges must not be negative",
			InvalidInput: true,
		}
	case facts.TotalPatients == 0:
		return Determination{
			Status:        StatusNotEligible,
			Reason:        ReasonMissingTotalVolume,
			InvalidInput:  true,
			PatientVolume: patientVolume,
		}
	case facts.ProgramPatients > facts.TotalPatients:
		return Determination{
			Status:        StatusNotEligible,
			Reason:        fmt.Sprintf("invalid input: program patients (%d) exceed total patients (%d)", facts.ProgramPatients, facts.TotalPatients),
			InvalidInput:  true,
			VolumePercent: 100,
			PatientVolume: patientVolume,
		}
	}

	volumePercent := float64(facts.ProgramPatients) / float64(facts.TotalPatients) * 100
	result := Determination{VolumePercent: volumePercent, PatientVolume: patientVolume}

	volumeMet := volumePercent >= rules.VolumePercentThreshold
	patientsMet := patientVolume >= rules.PatientVolumeThreshold
	chargesMet := facts.AllowedCharges >= rules.AllowedChargesThreshold

	if volumeMet && (patientsMet || chargesMet) {
		result.Status = StatusEligible
		return result
	}

	if patientVolume <= rules.LowVolumePatientCeiling && facts.AllowedCharges <= rules.LowVolumeChargesCeiling {
		result.Status = StatusExempt
		result.Reason = fmt.Sprintf("low volume: patient volume %d <= %d and allowed charges $%.2f <= $%.2f",
			patientVolume, rules.LowVolumePatientCeiling, facts.AllowedCharges, rules.LowVolumeChargesCeiling)
		return result
	}

	var failed []string
	if !volumeMet {
		failed = append(failed, fmt.Sprintf("medicare volume %.2f%% < %.2f%%", volumePercent, rules.VolumePercentThreshold))
	}
	if !patientsMet {
		failed = append(failed, fmt.Sprintf("patient volume %d < %d", patientVolume, rules.PatientVolumeThreshold))
	}
	if !chargesMet {
		failed = append(failed, fmt.Sprintf("allowed charges $%.2f < $%.2f", facts.AllowedCharges, rules.AllowedChargesThreshold))
	}
	result.Status = StatusNotEligible
	result.Reason = strings.Join(failed, "; ")
	return result
}

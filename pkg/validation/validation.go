package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/OldStager01/vitalwatch/pkg/models"
)

var (
	// ErrInvalidInput indicates the input failed validation
	ErrInvalidInput = errors.New("invalid input")

	// Patient IDs are alphanumeric with hyphens/underscores, 1-64 chars
	patientIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,63}$`)
)

// Plausible bounds reject sensor garbage, not abnormal physiology.
var plausible = map[string][2]float64{
	models.VitalHeartRate:   {0, 300},
	models.VitalSpO2:        {0, 100},
	models.VitalRespRate:    {0, 80},
	models.VitalSystolicBP:  {0, 300},
	models.VitalDiastolicBP: {0, 250},
	models.VitalTemperature: {25, 45},
}

// SanitizeString removes potentially dangerous characters and trims whitespace
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// ValidatePatientID checks if a patient identifier is usable as a key
func ValidatePatientID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: patient id cannot be empty", ErrInvalidInput)
	}
	if !patientIDRegex.MatchString(id) {
		return fmt.Errorf("%w: patient id must start with alphanumeric and contain only letters, numbers, hyphens, and underscores (max 64)", ErrInvalidInput)
	}
	return nil
}

// ValidateSnapshot checks a recorded snapshot before it is stored.
func ValidateSnapshot(s *models.VitalsSnapshot) error {
	if s == nil {
		return fmt.Errorf("%w: snapshot is required", ErrInvalidInput)
	}
	if err := ValidatePatientID(s.PatientID); err != nil {
		return err
	}
	if err := ValidateReadings(s.Readings()); err != nil {
		return err
	}
	if s.DiastolicBP >= s.SystolicBP && s.SystolicBP > 0 {
		return fmt.Errorf("%w: diastolic_bp must be below systolic_bp", ErrInvalidInput)
	}
	return nil
}

// ValidateReadings checks ad-hoc readings. Aliases are checked against the
// bounds of their canonical vital. Missing and NaN values are allowed;
// infinite or implausible values are not.
func ValidateReadings(r models.Readings) error {
	for key, v := range r {
		if math.IsNaN(v) {
			continue
		}
		if math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidInput, key)
		}
		vital, ok := models.CanonicalVital(key)
		if !ok {
			continue
		}
		bounds := plausible[vital]
		if v < bounds[0] || v > bounds[1] {
			return fmt.Errorf("%w: %s=%g outside plausible range [%g, %g]", ErrInvalidInput, key, v, bounds[0], bounds[1])
		}
	}
	return nil
}

// ClampLimit returns def for non-positive limits and caps the rest at max.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

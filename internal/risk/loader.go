package risk

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/OldStager01/vitalwatch/internal/logger"
)

// LoadModel reads threshold, weight and metadata overrides from a JSON or
// YAML file and merges them onto the defaults. An empty path yields the defaults.
func LoadModel(path string) (Model, error) {
	model := DefaultModel()
	if path == "" {
		return model, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return model, fmt.Errorf("failed to read model config: %w", err)
	}

	var overrides Overrides
	if err := v.Unmarshal(&overrides); err != nil {
		return model, fmt.Errorf("failed to unmarshal model config: %w", err)
	}

	merged, touched := model.WithOverrides(overrides)
	for _, vital := range touched {
		if !merged.Thresholds[vital].Ordered() {
			logger.WithField("vital", vital).Warn("Overridden thresholds are not in ascending order")
		}
	}

	if err := validateMetadata(merged.Metadata); err != nil {
		return model, err
	}

	return merged, nil
}

// LoadModelOrDefault never fails: a missing or malformed source is logged and
// the built-in defaults are used instead.
func LoadModelOrDefault(path string) Model {
	model, err := LoadModel(path)
	if err != nil {
		logger.WithError(err).WithField("path", path).
			Warn("Risk model configuration unavailable, using built-in defaults")
		return DefaultModel()
	}
	return model
}

func validateMetadata(m Metadata) error {
	if m.ROCAUC < 0 || m.ROCAUC > 1 {
		return fmt.Errorf("metadata.roc_auc must be between 0 and 1, got %v", m.ROCAUC)
	}
	if m.ModerateRisk > m.HighRisk {
		return fmt.Errorf("metadata.thresholds.moderate_risk (%v) must not exceed high_risk (%v)", m.ModerateRisk, m.HighRisk)
	}
	return nil
}

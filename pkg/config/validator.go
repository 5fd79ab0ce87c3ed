package config

import (
	"errors"
	"fmt"
)

var (
	validPolicies    = map[string]bool{"weighted": true, "rule_based": true}
	validProjections = map[string]bool{"detailed": true, "simplified": true}
	validPatterns    = map[string]bool{"steady": true, "deteriorating": true, "recovering": true, "hypoxic": true}
)

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, errors.New("database.port must be between 1 and 65535"))
	}
	if c.Database.Name == "" {
		errs = append(errs, errors.New("database.name is required"))
	}
	if c.Database.MaxConnections <= 0 {
		errs = append(errs, errors.New("database.max_connections must be positive"))
	}

	// Redis validation
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required when redis is enabled"))
		}
		if c.Redis.TTL <= 0 {
			errs = append(errs, errors.New("redis.ttl must be positive"))
		}
	}

	// Scoring validation
	if !validPolicies[c.Scoring.Policy] {
		errs = append(errs, fmt.Errorf("scoring.policy must be one of: weighted, rule_based"))
	}

	// Forecast validation
	if c.Forecast.HorizonMinutes <= 0 {
		errs = append(errs, errors.New("forecast.horizon_minutes must be positive"))
	}
	if c.Forecast.HistorySize < 2 {
		errs = append(errs, errors.New("forecast.history_size must be at least 2"))
	}
	if !validProjections[c.Forecast.Projection] {
		errs = append(errs, fmt.Errorf("forecast.projection must be one of: detailed, simplified"))
	}
	if c.Forecast.NoiseAmplitude < 0 {
		errs = append(errs, errors.New("forecast.noise_amplitude must not be negative"))
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.API.DefaultLimit <= 0 || c.API.DefaultLimit > c.API.MaxLimit {
		errs = append(errs, errors.New("api.default_limit must be positive and <= api.max_limit"))
	}

	// Prometheus validation
	if c.Prometheus.Enabled && c.Prometheus.Port == c.API.Port {
		errs = append(errs, errors.New("prometheus.port must differ from api.port"))
	}

	// Simulator validation
	for i, p := range c.Simulator.Patients {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("simulator.patients[%d].id is required", i))
		}
		if !validPatterns[p.Pattern] {
			errs = append(errs, fmt.Errorf("simulator.patients[%d].pattern %q is not supported", i, p.Pattern))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}

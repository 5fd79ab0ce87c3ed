package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/OldStager01/vitalwatch/internal/resilience"
	"github.com/OldStager01/vitalwatch/pkg/models"
)

var ErrCacheMiss = errors.New("risk cache miss")

type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// RiskCache keeps the latest risk result per patient in Redis.
type RiskCache struct {
	client  *redis.Client
	breaker *resilience.CircuitBreaker
	config  Config
}

func NewClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// New wraps client. A nil breaker lets every call through.
func New(client *redis.Client, breaker *resilience.CircuitBreaker, cfg Config) *RiskCache {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "vitalwatch:risk:"
	}
	if cfg.TTL == 0 {
		cfg.TTL = 15 * time.Minute
	}
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Name: "risk-cache"})
	}
	return &RiskCache{
		client:  client,
		breaker: breaker,
		config:  cfg,
	}
}

func (c *RiskCache) key(patientID string) string {
	return c.config.KeyPrefix + patientID + ":latest"
}

func (c *RiskCache) SetLatest(ctx context.Context, result *models.RiskResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode risk result: %w", err)
	}

	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.client.Set(ctx, c.key(result.PatientID), data, c.config.TTL).Err()
	})
}

// Latest returns ErrCacheMiss when nothing is cached for the patient.
func (c *RiskCache) Latest(ctx context.Context, patientID string) (*models.RiskResult, error) {
	var data []byte
	miss := false

	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		b, err := c.client.Get(ctx, c.key(patientID)).Bytes()
		if errors.Is(err, redis.Nil) {
			miss = true
			return nil
		}
		data = b
		return err
	})
	if err != nil {
		return nil, err
	}
	if miss {
		return nil, ErrCacheMiss
	}

	var result models.RiskResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached risk result: %w", err)
	}
	return &result, nil
}

func (c *RiskCache) Invalidate(ctx context.Context, patientID string) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.client.Del(ctx, c.key(patientID)).Err()
	})
}

func (c *RiskCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RiskCache) Close() error {
	return c.client.Close()
}

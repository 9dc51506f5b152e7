package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opsdash/backend-go/internal/config"
	"github.com/opsdash/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	forecastSweepKeyPrefix    = "forecast:sweep"
	forecastLowStockKeyPrefix = "forecast:low_stock"
	forecastScanBatchSize     = 100
)

// SweepKey identifies one cached forecast evaluation.
type SweepKey struct {
	BrandID    *int64 `json:"brand_id"`
	WindowDays int    `json:"window_days"`
}

// ForecastCache caches forecast sweeps and low-stock reports. Mutating
// services invalidate it after every stock-affecting write; entries also
// expire on a short TTL.
type ForecastCache interface {
	GetSweep(ctx context.Context, key SweepKey) ([]domain.ComponentForecast, bool, error)
	SetSweep(ctx context.Context, key SweepKey, rows []domain.ComponentForecast) error
	GetLowStock(ctx context.Context, key SweepKey) (*domain.LowStockReport, bool, error)
	SetLowStock(ctx context.Context, key SweepKey, report *domain.LowStockReport) error
	InvalidateAll(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

// NewForecastCache returns a redis-backed cache when enabled, otherwise a
// noop implementation.
func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisForecastCache{client: client, ttl: ttl}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) GetSweep(ctx context.Context, key SweepKey) ([]domain.ComponentForecast, bool, error) {
	payload, err := c.client.Get(ctx, buildForecastKey(forecastSweepKeyPrefix, key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var rows []domain.ComponentForecast
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached sweep: %w", err)
	}
	return rows, true, nil
}

func (c *redisForecastCache) SetSweep(ctx context.Context, key SweepKey, rows []domain.ComponentForecast) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to encode sweep: %w", err)
	}
	if err := c.client.Set(ctx, buildForecastKey(forecastSweepKeyPrefix, key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) GetLowStock(ctx context.Context, key SweepKey) (*domain.LowStockReport, bool, error) {
	payload, err := c.client.Get(ctx, buildForecastKey(forecastLowStockKeyPrefix, key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.LowStockReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return &report, true, nil
}

func (c *redisForecastCache) SetLowStock(ctx context.Context, key SweepKey, report *domain.LowStockReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := c.client.Set(ctx, buildForecastKey(forecastLowStockKeyPrefix, key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	if err := deleteKeysWithPrefix(ctx, c.client, forecastSweepKeyPrefix, forecastScanBatchSize); err != nil {
		return err
	}
	return deleteKeysWithPrefix(ctx, c.client, forecastLowStockKeyPrefix, forecastScanBatchSize)
}

func buildForecastKey(prefix string, key SweepKey) string {
	payload, _ := json.Marshal(key)
	sum := sha1.Sum(payload)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

func (noopForecastCache) GetSweep(context.Context, SweepKey) ([]domain.ComponentForecast, bool, error) {
	return nil, false, nil
}

func (noopForecastCache) SetSweep(context.Context, SweepKey, []domain.ComponentForecast) error {
	return nil
}

func (noopForecastCache) GetLowStock(context.Context, SweepKey) (*domain.LowStockReport, bool, error) {
	return nil, false, nil
}

func (noopForecastCache) SetLowStock(context.Context, SweepKey, *domain.LowStockReport) error {
	return nil
}

func (noopForecastCache) InvalidateAll(context.Context) error {
	return nil
}

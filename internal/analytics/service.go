package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	pkgerrors "github.com/storeopshq/storeops-backend/pkg/errors"
	"github.com/storeopshq/storeops-backend/pkg/logger"
	"github.com/storeopshq/storeops-backend/pkg/redis"
)

const (
	defaultDeadStockDays = 90
	defaultVelocityDays  = 30
	defaultForecastSpan  = 4
	maxWindowDays        = 365
	maxForecastSpan      = 12
)

// Source is the upstream analytics surface.
type Source interface {
	DashboardSummary(ctx context.Context) (json.RawMessage, error)
	ReorderAlerts(ctx context.Context) (json.RawMessage, error)
	DeadStock(ctx context.Context, days int) (json.RawMessage, error)
	DemandForecast(ctx context.Context, itemCode string, periods int) (json.RawMessage, error)
	SalesVelocity(ctx context.Context, days int) (json.RawMessage, error)
}

// Cache is the subset of the redis client the read-through uses.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

// Service exposes the dashboard analytics reads. Responses come back
// verbatim from the inventory backend; a short-TTL cache absorbs
// repeated dashboard polling.
type Service interface {
	Summary(ctx context.Context) (json.RawMessage, error)
	ReorderAlerts(ctx context.Context) (json.RawMessage, error)
	DeadStock(ctx context.Context, days int) (json.RawMessage, error)
	DemandForecast(ctx context.Context, itemCode string, periods int) (json.RawMessage, error)
	SalesVelocity(ctx context.Context, days int) (json.RawMessage, error)
}

type service struct {
	upstream Source
	cache    Cache
	cacheTTL time.Duration
	logger   *logger.Logger
}

// NewService builds the analytics service. A nil cache disables the
// read-through and every call goes straight upstream.
func NewService(upstream Source, cache Cache, cacheTTL time.Duration, logg *logger.Logger) (Service, error) {
	if upstream == nil {
		return nil, fmt.Errorf("upstream client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		upstream: upstream,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logg,
	}, nil
}

func (s *service) Summary(ctx context.Context) (json.RawMessage, error) {
	return s.readThrough(ctx, []string{"analytics", "summary"}, func() (json.RawMessage, error) {
		return s.upstream.DashboardSummary(ctx)
	})
}

func (s *service) ReorderAlerts(ctx context.Context) (json.RawMessage, error) {
	return s.readThrough(ctx, []string{"analytics", "reorder-alerts"}, func() (json.RawMessage, error) {
		return s.upstream.ReorderAlerts(ctx)
	})
}

func (s *service) DeadStock(ctx context.Context, days int) (json.RawMessage, error) {
	days, err := windowDays(days, defaultDeadStockDays)
	if err != nil {
		return nil, err
	}
	return s.readThrough(ctx, []string{"analytics", "dead-stock", strconv.Itoa(days)}, func() (json.RawMessage, error) {
		return s.upstream.DeadStock(ctx, days)
	})
}

func (s *service) DemandForecast(ctx context.Context, itemCode string, periods int) (json.RawMessage, error) {
	if itemCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item code is required")
	}
	if periods == 0 {
		periods = defaultForecastSpan
	}
	if periods < 1 || periods > maxForecastSpan {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("periods must be between 1 and %d", maxForecastSpan))
	}
	return s.readThrough(ctx, []string{"analytics", "forecast", itemCode, strconv.Itoa(periods)}, func() (json.RawMessage, error) {
		return s.upstream.DemandForecast(ctx, itemCode, periods)
	})
}

func (s *service) SalesVelocity(ctx context.Context, days int) (json.RawMessage, error) {
	days, err := windowDays(days, defaultVelocityDays)
	if err != nil {
		return nil, err
	}
	return s.readThrough(ctx, []string{"analytics", "velocity", strconv.Itoa(days)}, func() (json.RawMessage, error) {
		return s.upstream.SalesVelocity(ctx, days)
	})
}

// readThrough serves from cache when possible and falls back to the
// upstream on any cache trouble. Cache failures never fail the read.
func (s *service) readThrough(ctx context.Context, keyParts []string, fetch func() (json.RawMessage, error)) (json.RawMessage, error) {
	if s.cache == nil {
		return fetch()
	}

	key := s.cache.CacheKey(keyParts...)
	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		return json.RawMessage(cached), nil
	}
	if !errors.Is(err, redis.Nil) {
		s.logger.Warn(s.logger.WithField(ctx, "cache_key", key), "analytics cache read failed")
	}

	fresh, err := fetch()
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, string(fresh), s.cacheTTL); err != nil {
		s.logger.Warn(s.logger.WithField(ctx, "cache_key", key), "analytics cache write failed")
	}

	return fresh, nil
}

func windowDays(days, fallback int) (int, error) {
	if days == 0 {
		return fallback, nil
	}
	if days < 1 || days > maxWindowDays {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("days must be between 1 and %d", maxWindowDays))
	}
	return days, nil
}

// Package indicator reads World Bank indicator snapshots and derives the
// relative multipliers used in fee calculation.
package indicator

import (
	"context"
	"fmt"
	"time"

	"consortial/internal/metrics"
	"consortial/internal/models"
	"consortial/internal/repositories"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Opener returns one year of an indicator keyed by alpha-3 country or region
// code. A year that was never fetched yields an empty map.
type Opener interface {
	Open(ctx context.Context, indicator string, year int) (map[string]float64, error)
}

// SnapshotCache is the cache shared between processes.
type SnapshotCache interface {
	GetSnapshot(ctx context.Context, indicator string, year int) (map[string]float64, bool, error)
	CacheSnapshot(ctx context.Context, indicator string, year int, values map[string]float64) error
	InvalidateSnapshot(ctx context.Context, indicator string, year int) error
}

// StoreConfig sizes the in-process snapshot cache.
type StoreConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

// Store serves snapshots from an in-process LRU, then the shared cache, then
// postgres. Concurrent loads of the same snapshot are collapsed into one.
// Returned maps are shared and must not be modified.
type Store struct {
	repo    repositories.IndicatorRepository
	shared  SnapshotCache
	local   *lru.LRU[string, map[string]float64]
	group   singleflight.Group
	metrics metrics.MetricsCollector
	log     *logrus.Logger
}

// NewStore creates a Store. shared may be nil when no redis is configured.
func NewStore(
	repo repositories.IndicatorRepository,
	shared SnapshotCache,
	cfg StoreConfig,
	metricsCollector metrics.MetricsCollector,
	log *logrus.Logger,
) *Store {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 64
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if metricsCollector == nil {
		metricsCollector = &metrics.NoopMetricsCollector{}
	}
	if log == nil {
		log = logrus.New()
	}
	return &Store{
		repo:    repo,
		shared:  shared,
		local:   lru.NewLRU[string, map[string]float64](cfg.CacheSize, nil, cfg.CacheTTL),
		metrics: metricsCollector,
		log:     log,
	}
}

func snapshotKey(indicator string, year int) string {
	return fmt.Sprintf("%s:%d", indicator, year)
}

// Open implements Opener.
func (s *Store) Open(ctx context.Context, indicator string, year int) (map[string]float64, error) {
	key := snapshotKey(indicator, year)
	if values, ok := s.local.Get(key); ok {
		s.metrics.RecordCacheHit("lru")
		return values, nil
	}
	s.metrics.RecordCacheMiss("lru")

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.load(ctx, indicator, year)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]float64), nil
}

func (s *Store) load(ctx context.Context, indicator string, year int) (map[string]float64, error) {
	key := snapshotKey(indicator, year)
	logger := s.log.WithFields(logrus.Fields{"indicator": indicator, "year": year})

	if s.shared != nil {
		values, found, err := s.shared.GetSnapshot(ctx, indicator, year)
		switch {
		case err != nil:
			logger.WithError(err).Warn("shared snapshot cache unavailable")
		case found:
			s.metrics.RecordCacheHit("redis")
			s.local.Add(key, values)
			return values, nil
		default:
			s.metrics.RecordCacheMiss("redis")
		}
	}

	snapshot, err := s.repo.Get(ctx, indicator, year)
	if err != nil {
		s.metrics.RecordError("open_snapshot", "database")
		return nil, err
	}
	values := map[string]float64{}
	if snapshot != nil && snapshot.Values != nil {
		values = snapshot.Values
	} else {
		logger.Debug("no snapshot saved")
	}

	if s.shared != nil {
		if err := s.shared.CacheSnapshot(ctx, indicator, year, values); err != nil {
			logger.WithError(err).Warn("failed to cache snapshot")
		}
	}
	s.local.Add(key, values)
	return values, nil
}

// Save persists a snapshot and drops every cached copy of it.
func (s *Store) Save(ctx context.Context, snapshot *models.IndicatorSnapshot) error {
	if err := s.repo.Upsert(ctx, snapshot); err != nil {
		return err
	}
	s.local.Remove(snapshotKey(snapshot.Indicator, snapshot.Year))
	if s.shared != nil {
		if err := s.shared.InvalidateSnapshot(ctx, snapshot.Indicator, snapshot.Year); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"indicator": snapshot.Indicator,
				"year":      snapshot.Year,
			}).Warn("failed to invalidate cached snapshot")
		}
	}
	return nil
}

package app

import (
	"context"
	"fmt"

	"consortial/internal/config"
	"consortial/internal/metrics"
	"consortial/internal/repositories"
	"consortial/internal/repositories/cache"
	"consortial/internal/services/indicator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Runtime holds the live connections behind the services.
type Runtime struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Cache    *cache.CacheService
	Registry *prometheus.Registry
	Metrics  metrics.MetricsCollector
	Services *Services
}

// Start connects to postgres and, when configured, redis and assembles the
// services from environment configuration.
func Start(ctx context.Context, log *logrus.Logger) (*Runtime, error) {
	db, err := repositories.InitDB(config.LoadDBConfig(), log)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{DB: db, Registry: prometheus.NewRegistry()}
	rt.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var shared indicator.SnapshotCache
	redisCfg := config.LoadRedisConfig()
	if client := cache.NewRedisClient(redisCfg); client != nil {
		rt.Redis = client
		rt.Cache = cache.NewCacheService(client, redisCfg.TTL)
		if err := rt.Cache.HealthCheck(ctx); err != nil {
			log.WithError(err).Warn("redis unavailable, snapshot cache limited to this process")
		} else {
			log.Info("Redis connected")
		}
		shared = rt.Cache
	}

	rt.Metrics = metrics.NewPrometheusCollector(rt.Registry)
	rt.Services = NewServices(NewRepositories(db), shared, config.LoadSettings(), rt.Metrics, log)
	return rt, nil
}

// PingDB checks the postgres connection.
func (rt *Runtime) PingDB(ctx context.Context) error {
	sqlDB, err := rt.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connections.
func (rt *Runtime) Close(log *logrus.Logger) {
	if rt.DB != nil {
		if sqlDB, err := rt.DB.DB(); err != nil {
			log.WithError(err).Warn("failed to get database instance")
		} else if err := sqlDB.Close(); err != nil {
			log.WithError(err).Warn("failed to close database connection")
		}
	}
	if rt.Cache != nil {
		if err := rt.Cache.Close(); err != nil {
			log.WithError(err).Warn("failed to close redis connection")
		}
	}
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheService stores JSON values in redis with a default TTL.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Get decodes the cached value into dest and reports whether the key existed.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Key generation
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// SnapshotKey addresses one year of one indicator.
func (s *CacheService) SnapshotKey(indicator string, year int) string {
	return s.GenerateKey("indicator", indicator, year)
}

// Indicator snapshot caching
func (s *CacheService) CacheSnapshot(ctx context.Context, indicator string, year int, values map[string]float64) error {
	if values == nil {
		values = map[string]float64{}
	}
	return s.Set(ctx, s.SnapshotKey(indicator, year), values)
}

func (s *CacheService) GetSnapshot(ctx context.Context, indicator string, year int) (map[string]float64, bool, error) {
	var values map[string]float64
	found, err := s.Get(ctx, s.SnapshotKey(indicator, year), &values)
	if err != nil || !found {
		return nil, found, err
	}
	return values, true, nil
}

func (s *CacheService) InvalidateSnapshot(ctx context.Context, indicator string, year int) error {
	return s.Delete(ctx, s.SnapshotKey(indicator, year))
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}

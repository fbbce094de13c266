package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
)

// Cache key prefixes. Mutations drop everything under both.
const (
	SnapshotCachePrefix  = "findnest:snapshot:"
	DashboardCachePrefix = "findnest:dash:"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) (int, error)
}

// CacheService orchestrates cache operations and related metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
// Backend failures are logged and reported as a miss so reads fall through to the source.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return true
}

// Set stores the value in cache. Failures are logged, never returned.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !s.Enabled() {
		return
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes every key under the given prefixes.
func (s *CacheService) Invalidate(ctx context.Context, prefixes ...string) error {
	if !s.Enabled() {
		return nil
	}
	var firstErr error
	for _, prefix := range prefixes {
		removed, err := s.repo.DeleteByPattern(ctx, prefix+"*")
		s.metrics.RecordInvalidation(removed)
		if err != nil {
			s.logger.Warn("cache invalidate failed", zap.String("prefix", prefix), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// InvalidateAll drops the snapshot and dashboard caches after a mutation.
func (s *CacheService) InvalidateAll(ctx context.Context) error {
	return s.Invalidate(ctx, SnapshotCachePrefix, DashboardCachePrefix)
}

// Fingerprint derives a short stable key fragment from any JSON-encodable value.
func Fingerprint(parts ...interface{}) string {
	payload, err := json.Marshal(parts)
	if err != nil {
		return "invalid"
	}
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:12])
}

// CacheKey joins a prefix with key segments.
func CacheKey(prefix string, segments ...string) string {
	return prefix + strings.Join(segments, ":")
}

package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/findnest-api/internal/models"
)

type itemSource interface {
	List(ctx context.Context) ([]models.Item, error)
	History(ctx context.Context) ([]models.Item, error)
}

type userSource interface {
	List(ctx context.Context) ([]models.User, error)
}

// SnapshotService reads full item and user lists from the backend, with a short-lived cache
// that every mutation drops.
type SnapshotService struct {
	items  itemSource
	users  userSource
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewSnapshotService constructs a snapshot reader.
func NewSnapshotService(items itemSource, users userSource, cache *CacheService, ttl time.Duration, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &SnapshotService{items: items, users: users, cache: cache, ttl: ttl, logger: logger}
}

// Live returns every live item.
func (s *SnapshotService) Live(ctx context.Context) ([]models.Item, error) {
	return cachedList(ctx, s, "live", s.items.List)
}

// Historical returns every soft-deleted item.
func (s *SnapshotService) Historical(ctx context.Context) ([]models.Item, error) {
	return cachedList(ctx, s, "history", s.items.History)
}

// Users returns every account.
func (s *SnapshotService) Users(ctx context.Context) ([]models.User, error) {
	return cachedList(ctx, s, "users", s.users.List)
}

// Items fetches live and historical items concurrently. Either failure fails both.
func (s *SnapshotService) Items(ctx context.Context) (live, historical []models.Item, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		live, err = s.Live(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		historical, err = s.Historical(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return live, historical, nil
}

func cachedList[T any](ctx context.Context, s *SnapshotService, name string, load func(context.Context) ([]T, error)) ([]T, error) {
	key := CacheKey(SnapshotCachePrefix, name)
	var cached []T
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	fresh, err := load(ctx)
	if err != nil {
		s.logger.Warn("snapshot fetch failed", zap.String("snapshot", name), zap.Error(err))
		return nil, err
	}
	if fresh == nil {
		fresh = []T{}
	}
	s.cache.Set(ctx, key, fresh, s.ttl)
	return fresh, nil
}

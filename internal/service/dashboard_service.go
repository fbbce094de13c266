package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/findnest-api/internal/dto"
	"github.com/noah-isme/findnest-api/internal/models"
	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
)

type snapshotReader interface {
	Items(ctx context.Context) (live, historical []models.Item, err error)
	Users(ctx context.Context) ([]models.User, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL    time.Duration
	RecentLimit int
	Location    *time.Location
}

// DashboardService composes the analytics dashboard from backend snapshots.
type DashboardService struct {
	snapshots snapshotReader
	cache     *CacheService
	logger    *zap.Logger
	now       func() time.Time
	cfg       DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(snapshots snapshotReader, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = DefaultRecentLimit
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		snapshots: snapshots,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

// Location returns the display timezone.
func (s *DashboardService) Location() *time.Location {
	return s.cfg.Location
}

// ParseFilter converts query parameters into a filter. Actions may repeat or be comma-separated.
func (s *DashboardService) ParseFilter(params dto.FilterParams) (models.FilterConfig, error) {
	return ParseFilterParams(params, s.cfg.Location)
}

// ParseFilterParams converts query parameters into a filter using loc for date bounds.
func ParseFilterParams(params dto.FilterParams, loc *time.Location) (models.FilterConfig, error) {
	var cfg models.FilterConfig
	for _, raw := range params.Action {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			action, ok := models.ParseItemAction(part)
			if !ok {
				return cfg, appErrors.Clone(appErrors.ErrValidation, "unknown action "+part)
			}
			cfg.Actions = append(cfg.Actions, action)
		}
	}
	cfg.Name = strings.TrimSpace(params.Name)

	start, err := ParseDay(params.Start, loc)
	if err != nil {
		return cfg, appErrors.Clone(appErrors.ErrValidation, "start must be YYYY-MM-DD")
	}
	end, err := ParseDay(params.End, loc)
	if err != nil {
		return cfg, appErrors.Clone(appErrors.ErrValidation, "end must be YYYY-MM-DD")
	}
	cfg.Start, cfg.End = start, end
	return cfg, nil
}

// Dashboard returns the analytics payload for the caller and whether it came from cache.
func (s *DashboardService) Dashboard(ctx context.Context, caller models.Principal, filter models.FilterConfig) (*dto.DashboardResponse, bool, error) {
	key := CacheKey(DashboardCachePrefix, string(caller.Role), caller.Department, Fingerprint(filter))
	var cached dto.DashboardResponse
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	resp, err := s.compose(ctx, caller, filter)
	if err != nil {
		return nil, false, err
	}
	s.cache.Set(ctx, key, resp, s.cfg.CacheTTL)
	return resp, false, nil
}

// Rows returns one page of the aggregated, filtered rows.
func (s *DashboardService) Rows(ctx context.Context, filter models.FilterConfig, page, pageSize int) ([]models.DisplayItem, *models.Pagination, error) {
	agg, err := s.aggregate(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	rows, pagination := Paginate(agg.Rows, page, pageSize)
	return rows, pagination, nil
}

// Aggregate runs the aggregation over fresh snapshots. Report generation uses it directly.
func (s *DashboardService) Aggregate(ctx context.Context, filter models.FilterConfig) (models.Aggregation, error) {
	return s.aggregate(ctx, filter)
}

func (s *DashboardService) aggregate(ctx context.Context, filter models.FilterConfig) (models.Aggregation, error) {
	live, historical, err := s.snapshots.Items(ctx)
	if err != nil {
		return models.Aggregation{}, err
	}
	return Aggregate(live, historical, filter, s.options()), nil
}

func (s *DashboardService) compose(ctx context.Context, caller models.Principal, filter models.FilterConfig) (*dto.DashboardResponse, error) {
	live, historical, err := s.snapshots.Items(ctx)
	if err != nil {
		return nil, err
	}
	opts := s.options()
	agg := Aggregate(live, historical, filter, opts)
	buckets := BucketByDay(live, opts.Now, opts.Location)

	resp := &dto.DashboardResponse{
		Counters:      agg.Counters,
		RecentFound:   agg.RecentFound,
		RecentClaimed: agg.RecentClaimed,
		Buckets:       buckets.Reversed(),
		Trend:         TrendSeries(buckets, opts.Now, opts.Location),
		Rows:          agg.Rows,
		Filter:        filter,
		GeneratedAt:   opts.Now.UTC(),
	}

	if caller.Role != models.RoleStaff {
		users, err := s.snapshots.Users(ctx)
		if err != nil {
			return nil, err
		}
		if count, visible := CountUsers(users, caller); visible {
			resp.Users = &dto.UserCountCard{Count: count}
		}
	}
	return resp, nil
}

func (s *DashboardService) options() AggregateOptions {
	return AggregateOptions{Now: s.now(), Location: s.cfg.Location, RecentLimit: s.cfg.RecentLimit}
}

// Paginate slices rows for the requested page. Page numbers start at 1.
func Paginate[T any](rows []T, page, pageSize int) ([]T, *models.Pagination) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	total := len(rows)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return rows[start:end], &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}

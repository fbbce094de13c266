package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/findnest-api/internal/dto"
	"github.com/noah-isme/findnest-api/internal/models"
	"github.com/noah-isme/findnest-api/internal/repository"
	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
)

type itemStore interface {
	Get(ctx context.Context, id string) (*models.Item, error)
	Create(ctx context.Context, item models.Item) (*models.Item, error)
	Update(ctx context.Context, id string, item models.Item) (*models.Item, error)
	Claim(ctx context.Context, id string, req repository.ClaimRequest) (*models.Item, error)
	Turnover(ctx context.Context, id string, req repository.TurnoverRequest) (*models.Item, error)
	Delete(ctx context.Context, id string) error
}

type itemSnapshots interface {
	Live(ctx context.Context) ([]models.Item, error)
	Historical(ctx context.Context) ([]models.Item, error)
}

type itemImageUploader interface {
	UploadItemImages(ctx context.Context, files []UploadFile, existing int) ([]string, error)
	DiscardItemImages(ctx context.Context, urls []string)
}

// ItemService proxies item mutations to the backend and serves the table and gallery views.
type ItemService struct {
	store     itemStore
	snapshots itemSnapshots
	uploads   itemImageUploader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewItemService constructs an ItemService.
func NewItemService(store itemStore, snapshots itemSnapshots, uploads itemImageUploader, cache *CacheService, validate *validator.Validate, logger *zap.Logger, loc *time.Location) *ItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ItemService{
		store:     store,
		snapshots: snapshots,
		uploads:   uploads,
		cache:     cache,
		validator: validate,
		logger:    logger,
		loc:       loc,
		now:       time.Now,
	}
}

// Table returns a page of live items for the management table.
func (s *ItemService) Table(ctx context.Context, params dto.ItemTableParams) ([]models.Item, *models.Pagination, error) {
	live, err := s.snapshots.Live(ctx)
	if err != nil {
		return nil, nil, err
	}
	rows := FilterItemTable(live, models.ItemTableQuery{Tab: ParseItemTab(params.Tab), Search: params.Search}, s.loc)
	page, pagination := Paginate(rows, params.Page, params.PageSize)
	return page, pagination, nil
}

// Gallery returns a page of open items for the public gallery.
func (s *ItemService) Gallery(ctx context.Context, params dto.GalleryParams) ([]models.Item, *models.Pagination, error) {
	start, err := ParseDay(params.Start, s.loc)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid start date")
	}
	end, err := ParseDay(params.End, s.loc)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid end date")
	}
	live, err := s.snapshots.Live(ctx)
	if err != nil {
		return nil, nil, err
	}
	rows := FilterGallery(live, models.GalleryQuery{Search: params.Search, Category: params.Category, Start: start, End: end}, s.loc)
	page, pagination := Paginate(rows, params.Page, params.PageSize)
	return page, pagination, nil
}

// History returns soft-deleted items, newest first.
func (s *ItemService) History(ctx context.Context) ([]models.Item, error) {
	items, err := s.snapshots.Historical(ctx)
	if err != nil {
		return nil, err
	}
	out := append([]models.Item(nil), items...)
	sortItemsDesc(out, func(i models.Item) models.RawTime { return models.FirstTime(i.DeletedAt, i.UpdatedAt) }, s.loc)
	return out, nil
}

// Get fetches a single item.
func (s *ItemService) Get(ctx context.Context, id string) (*models.Item, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "item id is required")
	}
	return s.store.Get(ctx, id)
}

// Catalog lists the enumerations used by item forms.
func (s *ItemService) Catalog() dto.CatalogResponse {
	return dto.CatalogResponse{
		Categories: append([]string(nil), models.Categories...),
		Offices:    append([]string(nil), models.Offices...),
		Statuses:   []string{string(models.ItemStatusAvailable), string(models.ItemStatusClaimed)},
	}
}

// Report validates a new item, uploads its images and saves it. Every upload finishes
// before the save is sent; a failed upload aborts the save and a failed save discards the uploads.
func (s *ItemService) Report(ctx context.Context, req dto.ItemRequest, files []UploadFile, actor models.Principal) (*models.Item, error) {
	item, uploaded, err := s.prepare(ctx, req, files, actor)
	if err != nil {
		return nil, err
	}
	saved, err := s.store.Create(ctx, item)
	if err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("item reported", zap.String("item_id", string(saved.ID)), zap.String("user_id", actor.ID))
	return saved, nil
}

// Update applies the same rules as Report to an existing item.
func (s *ItemService) Update(ctx context.Context, id string, req dto.ItemRequest, files []UploadFile, actor models.Principal) (*models.Item, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "item id is required")
	}
	item, uploaded, err := s.prepare(ctx, req, files, actor)
	if err != nil {
		return nil, err
	}
	item.ID = models.ID(id)
	saved, err := s.store.Update(ctx, id, item)
	if err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}
	s.invalidate(ctx)
	return saved, nil
}

// Claim records that the owner collected the item. The date defaults to now.
func (s *ItemService) Claim(ctx context.Context, id string, req dto.ClaimRequest, actor models.Principal) (*models.Item, error) {
	req.ClaimantName = strings.TrimSpace(req.ClaimantName)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = s.now().UTC().Format(time.RFC3339)
	}
	saved, err := s.store.Claim(ctx, id, repository.ClaimRequest{
		ClaimantName:  req.ClaimantName,
		Date:          date,
		UserRef:       actor.ID,
		ClaimantImage: req.ClaimantImage,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return saved, nil
}

// Turnover hands custody of an item to another office.
func (s *ItemService) Turnover(ctx context.Context, id string, req dto.TurnoverRequest) (*models.Item, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	saved, err := s.store.Turnover(ctx, id, repository.TurnoverRequest{
		TurnoverDate:   req.TurnoverDate,
		TurnoverPerson: strings.TrimSpace(req.TurnoverPerson),
		Department:     canonical(models.Offices, req.Department),
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return saved, nil
}

// Delete soft-deletes an item upstream.
func (s *ItemService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// prepare validates req and uploads files. It returns the item to save and the URLs uploaded
// for it, which the caller discards if the save fails.
func (s *ItemService) prepare(ctx context.Context, req dto.ItemRequest, files []UploadFile, actor models.Principal) (models.Item, []string, error) {
	req.Item = strings.TrimSpace(req.Item)
	req.Location = strings.TrimSpace(req.Location)
	req.Description = strings.TrimSpace(req.Description)
	req.ClaimantName = strings.TrimSpace(req.ClaimantName)
	req.ClaimedDate = strings.TrimSpace(req.ClaimedDate)
	if err := s.validator.Struct(req); err != nil {
		return models.Item{}, nil, validationError(err)
	}
	if _, ok := ParseTimestamp(models.RawTime(req.DateFound), s.loc); !ok {
		return models.Item{}, nil, appErrors.Clone(appErrors.ErrValidation, "dateFound is not a valid date")
	}
	status, err := parseItemStatus(req.Status)
	if err != nil {
		return models.Item{}, nil, err
	}
	if status == models.ItemStatusClaimed {
		if req.ClaimantName == "" {
			return models.Item{}, nil, appErrors.Clone(appErrors.ErrValidation, "claimantName is required for claimed items")
		}
		if _, ok := ParseTimestamp(models.RawTime(req.ClaimedDate), s.loc); !ok {
			return models.Item{}, nil, appErrors.Clone(appErrors.ErrValidation, "claimedDate is required for claimed items")
		}
	} else {
		req.ClaimantName, req.ClaimantImage, req.ClaimedDate = "", "", ""
	}
	if total := len(req.ImageURLs) + len(files); total > models.MaxItemImages {
		return models.Item{}, nil, appErrors.Clone(appErrors.ErrUploadRejected, fmt.Sprintf("you can only upload up to %d images per report", models.MaxItemImages))
	}

	images := append([]string{}, req.ImageURLs...)
	var uploaded []string
	if len(files) > 0 {
		if s.uploads == nil {
			return models.Item{}, nil, appErrors.Clone(appErrors.ErrUnavailable, "image uploads are not configured")
		}
		uploaded, err = s.uploads.UploadItemImages(ctx, files, len(req.ImageURLs))
		if err != nil {
			return models.Item{}, nil, err
		}
		images = append(images, uploaded...)
	}

	category := models.DefaultCategory
	if req.Category != "" {
		category = canonical(models.Categories, req.Category)
	}
	department := models.DefaultDepartment
	if req.Department != "" {
		department = canonical(models.Offices, req.Department)
	}

	return models.Item{
		Item:          req.Item,
		Description:   req.Description,
		Category:      category,
		Location:      req.Location,
		Department:    department,
		Status:        status,
		DateFound:     models.RawTime(req.DateFound),
		ClaimantName:  req.ClaimantName,
		ClaimantImage: req.ClaimantImage,
		ClaimedDate:   models.RawTime(req.ClaimedDate),
		UserRef:       actor.ID,
		ImageURLs:     images,
	}, uploaded, nil
}

func (s *ItemService) discard(ctx context.Context, urls []string) {
	if len(urls) == 0 || s.uploads == nil {
		return
	}
	s.logger.Warn("item save failed, discarding uploaded images", zap.Int("images", len(urls)))
	s.uploads.DiscardItemImages(ctx, urls)
}

func parseItemStatus(raw models.ItemStatus) (models.ItemStatus, error) {
	switch {
	case strings.TrimSpace(string(raw)) == "":
		return models.ItemStatusAvailable, nil
	case raw.IsClaimed():
		return models.ItemStatusClaimed, nil
	case strings.EqualFold(string(raw), string(models.ItemStatusAvailable)):
		return models.ItemStatusAvailable, nil
	case strings.EqualFold(string(raw), string(models.ItemStatusUnclaimed)):
		return models.ItemStatusUnclaimed, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", raw))
}

func (s *ItemService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.logger.Warn("cache invalidation after item mutation failed", zap.Error(err))
	}
}

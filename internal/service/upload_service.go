package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/findnest-api/internal/models"
	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
	"github.com/noah-isme/findnest-api/pkg/imaging"
)

const uploadConcurrency = 4

type objectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// UploadFile is one incoming image. Open is called at most once.
type UploadFile struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// UploadConfig bounds image uploads.
type UploadConfig struct {
	MaxFiles     int
	MaxFileBytes int64
	MaxDimension int
}

// UploadService validates, normalises and stores item photos and avatars.
type UploadService struct {
	store     objectStore
	processor *imaging.Processor
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       UploadConfig
}

// NewUploadService constructs an UploadService.
func NewUploadService(store objectStore, metrics *MetricsService, logger *zap.Logger, cfg UploadConfig) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = models.MaxItemImages
	}
	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = imaging.DefaultMaxBytes
	}
	return &UploadService{
		store:     store,
		processor: imaging.NewProcessor(cfg.MaxFileBytes, cfg.MaxDimension),
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
}

// MaxFiles returns the per-item image cap.
func (s *UploadService) MaxFiles() int {
	return s.cfg.MaxFiles
}

// UploadItemImages stores every file and returns their URLs in input order. existing counts
// images already attached to the item. Either every image is stored or none is.
func (s *UploadService) UploadItemImages(ctx context.Context, files []UploadFile, existing int) ([]string, error) {
	if len(files) == 0 {
		return []string{}, nil
	}
	if existing < 0 {
		existing = 0
	}
	if total := len(files) + existing; total > s.cfg.MaxFiles {
		err := appErrors.Clone(appErrors.ErrUploadRejected, fmt.Sprintf("you can only upload up to %d images per report", s.cfg.MaxFiles))
		s.metrics.RecordUpload(err)
		return nil, err
	}

	processed, err := s.processAll(files)
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(processed))
	for i := range processed {
		keys[i] = path.Join("items", uuid.NewString()+".jpg")
	}
	return s.putAll(ctx, keys, processed)
}

// UploadAvatar stores a profile picture for userID and returns its URL.
func (s *UploadService) UploadAvatar(ctx context.Context, userID string, file UploadFile) (string, error) {
	processed, err := s.processAll([]UploadFile{file})
	if err != nil {
		return "", err
	}
	urls, err := s.putAll(ctx, []string{path.Join("avatars", userID, uuid.NewString()+".jpg")}, processed)
	if err != nil {
		return "", err
	}
	return urls[0], nil
}

// DiscardItemImages removes item images this service stored, identified by the URLs it returned.
// URLs that do not point at an item image key are ignored.
func (s *UploadService) DiscardItemImages(ctx context.Context, urls []string) {
	if s.store == nil {
		return
	}
	keys := make([]string, 0, len(urls))
	for _, raw := range urls {
		if key, ok := itemImageKey(raw); ok {
			keys = append(keys, key)
		}
	}
	s.remove(ctx, keys)
}

func itemImageKey(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	dir, name := path.Split(strings.TrimRight(u.Path, "/"))
	if path.Base(dir) != "items" || !strings.HasSuffix(name, ".jpg") {
		return "", false
	}
	if _, err := uuid.Parse(strings.TrimSuffix(name, ".jpg")); err != nil {
		return "", false
	}
	return path.Join("items", name), true
}

// remove deletes keys even when ctx is already cancelled.
func (s *UploadService) remove(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.store.Delete(context.WithoutCancel(ctx), key); err != nil {
			s.logger.Warn("failed to remove orphaned image", zap.String("key", key), zap.Error(err))
		}
	}
}

// processAll validates and re-encodes every file before anything is stored.
func (s *UploadService) processAll(files []UploadFile) ([]*imaging.Result, error) {
	out := make([]*imaging.Result, len(files))
	for i, f := range files {
		if f.Size > s.cfg.MaxFileBytes {
			return nil, s.reject(f, imaging.ErrTooLarge)
		}
		res, err := s.processOne(f)
		if err != nil {
			return nil, s.reject(f, err)
		}
		out[i] = res
	}
	return out, nil
}

func (s *UploadService) processOne(f UploadFile) (*imaging.Result, error) {
	if f.Open == nil {
		return nil, imaging.ErrUnsupported
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck
	return s.processor.Process(rc)
}

func (s *UploadService) reject(f UploadFile, err error) error {
	s.metrics.RecordUpload(err)
	s.logger.Info("image rejected", zap.String("filename", f.Filename), zap.Int64("size", f.Size), zap.Error(err))
	msg := fmt.Sprintf("%s: %v", f.Filename, err)
	switch {
	case errors.Is(err, imaging.ErrTooManyPixels):
		msg = fmt.Sprintf("%s: image must be at most %d megapixels", f.Filename, imaging.MaxPixels/1_000_000)
	case errors.Is(err, imaging.ErrTooLarge):
		msg = fmt.Sprintf("%s: image must be less than %d MB", f.Filename, s.cfg.MaxFileBytes/(1024*1024))
	case errors.Is(err, imaging.ErrUnsupported):
		msg = fmt.Sprintf("%s: only JPEG and PNG images are accepted", f.Filename)
	}
	return appErrors.Wrap(err, appErrors.ErrUploadRejected.Code, appErrors.ErrUploadRejected.Status, msg)
}

// putAll uploads concurrently and waits for all. On any failure, objects already stored are removed.
func (s *UploadService) putAll(ctx context.Context, keys []string, images []*imaging.Result) ([]string, error) {
	if s.store == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "image storage is not configured")
	}
	urls := make([]string, len(images))
	var (
		mu     sync.Mutex
		stored []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i := range images {
		i := i
		g.Go(func() error {
			url, err := s.store.Put(gctx, keys[i], images[i].Data, images[i].MIME)
			if err != nil {
				return err
			}
			mu.Lock()
			stored = append(stored, keys[i])
			mu.Unlock()
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.metrics.RecordUpload(err)
		s.logger.Error("image upload failed", zap.Int("files", len(images)), zap.Error(err))
		s.remove(ctx, stored)
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "image storage failed")
	}
	for range images {
		s.metrics.RecordUpload(nil)
	}
	return urls, nil
}

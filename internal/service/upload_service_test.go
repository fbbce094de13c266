package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
)

type memoryObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  string
	deleted []string
}

func newMemoryObjectStore() *memoryObjectStore {
	return &memoryObjectStore{objects: map[string][]byte{}}
}

func (m *memoryObjectStore) Put(_ context.Context, key string, body []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != "" && len(m.objects) > 0 {
		return "", errors.New(m.failOn)
	}
	m.objects[key] = body
	return "https://cdn.test/" + key, nil
}

func (m *memoryObjectStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func pngFile(t *testing.T, name string) UploadFile {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{G: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	data := buf.Bytes()
	return UploadFile{
		Filename: name,
		Size:     int64(len(data)),
		Open:     func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

func textFile(name string) UploadFile {
	data := []byte("definitely not an image")
	return UploadFile{
		Filename: name,
		Size:     int64(len(data)),
		Open:     func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

func TestUploadItemImagesStoresInOrder(t *testing.T) {
	store := newMemoryObjectStore()
	svc := NewUploadService(store, NewMetricsService(), zap.NewNop(), UploadConfig{})

	urls, err := svc.UploadItemImages(context.Background(), []UploadFile{pngFile(t, "a.png"), pngFile(t, "b.png")}, 0)
	require.NoError(t, err)
	require.Len(t, urls, 2)
	for _, u := range urls {
		assert.True(t, strings.HasPrefix(u, "https://cdn.test/items/"))
		assert.True(t, strings.HasSuffix(u, ".jpg"))
	}
	assert.NotEqual(t, urls[0], urls[1])
	assert.Len(t, store.objects, 2)
}

func TestUploadItemImagesCountsExisting(t *testing.T) {
	store := newMemoryObjectStore()
	svc := NewUploadService(store, nil, zap.NewNop(), UploadConfig{MaxFiles: 5})

	_, err := svc.UploadItemImages(context.Background(), []UploadFile{pngFile(t, "a.png"), pngFile(t, "b.png")}, 4)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrUploadRejected.Code, appErr.Code)
	assert.Empty(t, store.objects)
}

func TestUploadItemImagesRejectsBadFileBeforeStoring(t *testing.T) {
	store := newMemoryObjectStore()
	svc := NewUploadService(store, nil, zap.NewNop(), UploadConfig{})

	_, err := svc.UploadItemImages(context.Background(), []UploadFile{pngFile(t, "a.png"), textFile("notes.txt")}, 0)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrUploadRejected.Status, appErr.Status)
	assert.Contains(t, appErr.Message, "notes.txt")
	assert.Empty(t, store.objects)
}

func TestUploadItemImagesRejectsOversize(t *testing.T) {
	svc := NewUploadService(newMemoryObjectStore(), nil, zap.NewNop(), UploadConfig{MaxFileBytes: 1024 * 1024})
	big := pngFile(t, "huge.png")
	big.Size = 3 * 1024 * 1024

	_, err := svc.UploadItemImages(context.Background(), []UploadFile{big}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "less than 1 MB")
}

func TestUploadItemImagesRollsBackOnStorageFailure(t *testing.T) {
	store := newMemoryObjectStore()
	store.failOn = "bucket unavailable"
	svc := NewUploadService(store, nil, zap.NewNop(), UploadConfig{})

	files := []UploadFile{pngFile(t, "a.png"), pngFile(t, "b.png"), pngFile(t, "c.png")}
	_, err := svc.UploadItemImages(context.Background(), files, 0)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrUpstream.Code, appErr.Code)
	assert.Empty(t, store.objects)
}

func TestUploadAvatar(t *testing.T) {
	store := newMemoryObjectStore()
	svc := NewUploadService(store, nil, zap.NewNop(), UploadConfig{})

	url, err := svc.UploadAvatar(context.Background(), "u-1", pngFile(t, "me.png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.test/avatars/u-1/"))
}

func TestUploadWithoutStore(t *testing.T) {
	svc := NewUploadService(nil, nil, zap.NewNop(), UploadConfig{})

	_, err := svc.UploadAvatar(context.Background(), "u-1", pngFile(t, "me.png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUnavailable)
}

func TestDiscardItemImagesRemovesOnlyItemKeys(t *testing.T) {
	store := newMemoryObjectStore()
	svc := NewUploadService(store, NewMetricsService(), zap.NewNop(), UploadConfig{})

	urls, err := svc.UploadItemImages(context.Background(), []UploadFile{pngFile(t, "a.png"), pngFile(t, "b.png")}, 0)
	require.NoError(t, err)

	svc.DiscardItemImages(context.Background(), append(urls, "https://cdn.test/avatars/u-1/x.jpg", "https://elsewhere.test/items/not-a-uuid.jpg"))
	assert.Empty(t, store.objects)
	assert.Len(t, store.deleted, 2)
	for _, key := range store.deleted {
		assert.True(t, strings.HasPrefix(key, "items/"))
	}
}

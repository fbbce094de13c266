package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/findnest-api/internal/models"
	"github.com/noah-isme/findnest-api/internal/service"
	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
)

type uploaderMock struct {
	existing int
	count    int
	err      error
}

func (u *uploaderMock) UploadItemImages(_ context.Context, files []service.UploadFile, existing int) ([]string, error) {
	u.existing, u.count = existing, len(files)
	if u.err != nil {
		return nil, u.err
	}
	urls := make([]string, len(files))
	for i := range files {
		urls[i] = "https://cdn.test/" + files[i].Filename
	}
	return urls, nil
}

func multipartRequest(t *testing.T, fields map[string]string, files ...string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, name := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, _ = part.Write([]byte("img"))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/uploads/images", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadHandlerImages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	up := &uploaderMock{}
	handler := NewUploadHandler(up)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, map[string]string{"existing": "2"}, "a.png", "b.jpg")

	handler.Images(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 2, up.existing)
	assert.Equal(t, 2, up.count)

	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{"https://cdn.test/a.png", "https://cdn.test/b.jpg"}, data["urls"])
}

func TestUploadHandlerRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewUploadHandler(&uploaderMock{err: appErrors.Clone(appErrors.ErrUploadRejected, "too many")})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, nil, "a.png")
	handler.Images(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = multipartRequest(t, nil)
	handler.Images(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMetricsHandler(service.NewMetricsService(), map[string]ReadinessCheck{
		"redis": func(context.Context) error { return nil },
	})
	c, w := newGinContext(http.MethodGet, "/ready", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	handler = NewMetricsHandler(nil, map[string]ReadinessCheck{
		"postgres": func(context.Context) error { return errors.New("connection refused") },
	})
	c, w = newGinContext(http.MethodGet, "/ready", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsHandlerSystem(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodGet, "/api/items", http.StatusOK, 0)
	handler := NewMetricsHandler(metrics, nil)

	c, w := newGinContext(http.MethodGet, "/system/metrics", nil)
	handler.System(c)
	require.Equal(t, http.StatusOK, w.Code)
	var snapshot struct {
		Data models.SystemMetrics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Equal(t, uint64(1), snapshot.Data.RequestsTotal)
}

package handler

import (
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/findnest-api/internal/middleware"
	"github.com/noah-isme/findnest-api/internal/models"
	"github.com/noah-isme/findnest-api/internal/service"
	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
	"github.com/noah-isme/findnest-api/pkg/response"
)

// principalFromContext returns the caller or writes a 401.
func principalFromContext(c *gin.Context) (models.Principal, bool) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Principal{}, false
	}
	return principal, true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// multipartFiles collects the uploaded files under any of the given field names.
func multipartFiles(c *gin.Context, fields ...string) ([]service.UploadFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid multipart form")
	}
	var out []service.UploadFile
	for _, field := range fields {
		for _, fh := range form.File[field] {
			out = append(out, uploadFile(fh))
		}
	}
	return out, nil
}

func uploadFile(fh *multipart.FileHeader) service.UploadFile {
	return service.UploadFile{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open:     func() (io.ReadCloser, error) { return fh.Open() },
	}
}

func formInt(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.PostForm(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

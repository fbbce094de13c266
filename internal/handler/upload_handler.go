package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/findnest-api/internal/dto"
	"github.com/noah-isme/findnest-api/internal/service"
	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
	"github.com/noah-isme/findnest-api/pkg/response"
)

type imageUploader interface {
	UploadItemImages(ctx context.Context, files []service.UploadFile, existing int) ([]string, error)
}

// UploadHandler accepts item photos ahead of an item save.
type UploadHandler struct {
	uploads imageUploader
}

// NewUploadHandler constructs the handler.
func NewUploadHandler(uploads imageUploader) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Images godoc
// @Summary Upload item images
// @Description JPEG or PNG, at most 2 MB each and 5 per item counting "existing"
// @Tags Uploads
// @Accept mpfd
// @Produce json
// @Param files formData file true "Images"
// @Param existing formData int false "Images already attached to the item"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /uploads/images [post]
func (h *UploadHandler) Images(c *gin.Context) {
	if h.uploads == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "image uploads are not configured"))
		return
	}
	files, err := multipartFiles(c, "files", "images")
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(files) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrUploadRejected, "no files uploaded"))
		return
	}
	urls, err := h.uploads.UploadItemImages(c.Request.Context(), files, formInt(c, "existing", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, dto.UploadResponse{URLs: urls}, nil)
}

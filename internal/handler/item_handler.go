package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/findnest-api/internal/dto"
	"github.com/noah-isme/findnest-api/internal/models"
	"github.com/noah-isme/findnest-api/internal/service"
	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
	"github.com/noah-isme/findnest-api/pkg/response"
)

type itemService interface {
	Table(ctx context.Context, params dto.ItemTableParams) ([]models.Item, *models.Pagination, error)
	Gallery(ctx context.Context, params dto.GalleryParams) ([]models.Item, *models.Pagination, error)
	History(ctx context.Context) ([]models.Item, error)
	Get(ctx context.Context, id string) (*models.Item, error)
	Catalog() dto.CatalogResponse
	Report(ctx context.Context, req dto.ItemRequest, files []service.UploadFile, actor models.Principal) (*models.Item, error)
	Update(ctx context.Context, id string, req dto.ItemRequest, files []service.UploadFile, actor models.Principal) (*models.Item, error)
	Claim(ctx context.Context, id string, req dto.ClaimRequest, actor models.Principal) (*models.Item, error)
	Turnover(ctx context.Context, id string, req dto.TurnoverRequest) (*models.Item, error)
	Delete(ctx context.Context, id string) error
}

// ItemHandler serves the item table, gallery and item mutations.
type ItemHandler struct {
	service itemService
}

// NewItemHandler constructs the handler.
func NewItemHandler(svc itemService) *ItemHandler {
	return &ItemHandler{service: svc}
}

// List godoc
// @Summary Item table
// @Tags Items
// @Produce json
// @Param tab query string false "all, unclaimed or claimed"
// @Param q query string false "Search text"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /items [get]
func (h *ItemHandler) List(c *gin.Context) {
	var params dto.ItemTableParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.Table(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Gallery godoc
// @Summary Found items gallery
// @Tags Items
// @Produce json
// @Param q query string false "Search text"
// @Param category query string false "Category"
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /items/gallery [get]
func (h *ItemHandler) Gallery(c *gin.Context) {
	var params dto.GalleryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.Gallery(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// History godoc
// @Summary Historical (deleted) items
// @Tags Items
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /items/history [get]
func (h *ItemHandler) History(c *gin.Context) {
	items, err := h.service.History(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Categories godoc
// @Summary Item form enumerations
// @Tags Items
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /items/categories [get]
func (h *ItemHandler) Categories(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Catalog(), nil)
}

// Get godoc
// @Summary Get item
// @Tags Items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /items/{id} [get]
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Report godoc
// @Summary Report a found item
// @Description JSON body, or multipart form with image files under "images"
// @Tags Items
// @Accept json,mpfd
// @Produce json
// @Param payload body dto.ItemRequest true "Item"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /items/report [post]
func (h *ItemHandler) Report(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	req, files, ok := bindItemRequest(c)
	if !ok {
		return
	}
	item, err := h.service.Report(c.Request.Context(), req, files, principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update an item
// @Tags Items
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Item ID"
// @Param payload body dto.ItemRequest true "Item"
// @Success 200 {object} response.Envelope
// @Router /items/{id} [put]
func (h *ItemHandler) Update(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	req, files, ok := bindItemRequest(c)
	if !ok {
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req, files, principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Claim godoc
// @Summary Claim an item
// @Tags Items
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param payload body dto.ClaimRequest true "Claim"
// @Success 200 {object} response.Envelope
// @Router /items/{id} [patch]
func (h *ItemHandler) Claim(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid claim payload"))
		return
	}
	item, err := h.service.Claim(c.Request.Context(), c.Param("id"), req, principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Turnover godoc
// @Summary Hand an item over to another office
// @Tags Items
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param payload body dto.TurnoverRequest true "Turnover"
// @Success 200 {object} response.Envelope
// @Router /items/{id}/turnover [patch]
func (h *ItemHandler) Turnover(c *gin.Context) {
	var req dto.TurnoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid turnover payload"))
		return
	}
	item, err := h.service.Turnover(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete an item
// @Tags Items
// @Param id path string true "Item ID"
// @Success 204
// @Router /items/{id} [delete]
func (h *ItemHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func bindItemRequest(c *gin.Context) (dto.ItemRequest, []service.UploadFile, bool) {
	var req dto.ItemRequest
	if !isMultipart(c) {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid item payload"))
			return req, nil, false
		}
		return req, nil, true
	}
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid item form"))
		return req, nil, false
	}
	files, err := multipartFiles(c, "images", "files")
	if err != nil {
		response.Error(c, err)
		return req, nil, false
	}
	return req, files, true
}

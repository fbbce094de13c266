package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/findnest-api/internal/dto"
	"github.com/noah-isme/findnest-api/internal/models"
	"github.com/noah-isme/findnest-api/internal/service"
	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
	"github.com/noah-isme/findnest-api/pkg/response"
)

type userService interface {
	Directory(ctx context.Context, caller models.Principal, search string, page, pageSize int) ([]models.User, *models.Pagination, error)
	Count(ctx context.Context, caller models.Principal) (dto.UserCountResponse, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, req dto.UserRequest, caller models.Principal) (*models.User, error)
	Update(ctx context.Context, id string, req dto.UserRequest, caller models.Principal) (*models.User, error)
	Delete(ctx context.Context, id string, caller models.Principal) error
	UploadProfilePicture(ctx context.Context, id string, file service.UploadFile) (string, error)
	SetProfilePicture(ctx context.Context, id, pictureURL string) error
}

// UserHandler manages the user directory endpoints.
type UserHandler struct {
	service userService
}

// NewUserHandler constructs a new user handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// List godoc
// @Summary User directory
// @Description Users the caller may manage. Admins see staff of their office.
// @Tags Users
// @Produce json
// @Param q query string false "Search text"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	users, pagination, err := h.service.Directory(c.Request.Context(), principal, c.Query("q"), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// Count godoc
// @Summary Role-scoped user count
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /users/count [get]
func (h *UserHandler) Count(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	count, err := h.service.Count(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, count, nil)
}

// Get godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Create godoc
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body dto.UserRequest true "User payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload"))
		return
	}
	user, err := h.service.Create(c.Request.Context(), req, principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Update godoc
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body dto.UserRequest true "User payload"
// @Success 200 {object} response.Envelope
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload"))
		return
	}
	user, err := h.service.Update(c.Request.Context(), c.Param("id"), req, principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Delete godoc
// @Summary Delete user
// @Tags Users
// @Param id path string true "User ID"
// @Success 204
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), principal); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadProfilePicture godoc
// @Summary Upload a profile picture
// @Tags Users
// @Accept mpfd
// @Produce json
// @Param id path string true "User ID"
// @Param file formData file true "JPEG or PNG image"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /users/{id}/profile-picture [post]
func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUploadRejected, "file is required"))
		return
	}
	pictureURL, err := h.service.UploadProfilePicture(c.Request.Context(), c.Param("id"), uploadFile(fh))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ProfilePictureResponse{ProfilePicture: pictureURL}, nil)
}

// SetProfilePicture godoc
// @Summary Point the profile picture at a hosted URL
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Param profilePictureUrl query string true "Image URL"
// @Success 200 {object} response.Envelope
// @Router /users/{id}/profile-picture [patch]
func (h *UserHandler) SetProfilePicture(c *gin.Context) {
	pictureURL := c.Query("profilePictureUrl")
	if err := h.service.SetProfilePicture(c.Request.Context(), c.Param("id"), pictureURL); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ProfilePictureResponse{ProfilePicture: pictureURL}, nil)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/findnest-api/internal/dto"
	"github.com/noah-isme/findnest-api/internal/models"
	"github.com/noah-isme/findnest-api/pkg/response"
)

type profileService interface {
	Profile(ctx context.Context, p models.Principal) (*models.Profile, error)
}

// AuthHandler exposes the caller profile and the public client configuration.
type AuthHandler struct {
	service profileService
	config  dto.ClientConfigResponse
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc profileService, config dto.ClientConfigResponse) *AuthHandler {
	return &AuthHandler{service: svc, config: config}
}

// Me godoc
// @Summary Current user profile
// @Description Token principal merged with the backend user record
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	profile, err := h.service.Profile(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Config godoc
// @Summary Public client configuration
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/config [get]
func (h *AuthHandler) Config(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.config, nil)
}

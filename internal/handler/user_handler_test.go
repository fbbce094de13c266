package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/findnest-api/internal/dto"
	"github.com/noah-isme/findnest-api/internal/models"
	"github.com/noah-isme/findnest-api/internal/service"
	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
)

type userServiceStub struct {
	search     string
	created    dto.UserRequest
	createErr  error
	pictureID  string
	pictureURL string
	uploaded   string
}

func (s *userServiceStub) Directory(_ context.Context, _ models.Principal, search string, page, pageSize int) ([]models.User, *models.Pagination, error) {
	s.search = search
	return []models.User{{ID: "s1"}}, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: 1}, nil
}

func (s *userServiceStub) Count(_ context.Context, caller models.Principal) (dto.UserCountResponse, error) {
	return dto.UserCountResponse{Count: 3, Visible: caller.Role != models.RoleStaff}, nil
}

func (s *userServiceStub) Get(_ context.Context, id string) (*models.User, error) {
	return &models.User{ID: models.ID(id)}, nil
}

func (s *userServiceStub) Create(_ context.Context, req dto.UserRequest, _ models.Principal) (*models.User, error) {
	s.created = req
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.User{ID: "new", Email: req.Email}, nil
}

func (s *userServiceStub) Update(_ context.Context, id string, _ dto.UserRequest, _ models.Principal) (*models.User, error) {
	return &models.User{ID: models.ID(id)}, nil
}

func (s *userServiceStub) Delete(context.Context, string, models.Principal) error { return nil }

func (s *userServiceStub) UploadProfilePicture(_ context.Context, id string, file service.UploadFile) (string, error) {
	s.uploaded = file.Filename
	return "https://cdn.test/avatars/" + id + ".jpg", nil
}

func (s *userServiceStub) SetProfilePicture(_ context.Context, id, pictureURL string) error {
	s.pictureID, s.pictureURL = id, pictureURL
	return nil
}

func TestUserHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &userServiceStub{}
	handler := NewUserHandler(svc)

	c, w := newGinContext(http.MethodGet, "/users?q=ana", nil)
	withPrincipal(c, models.Principal{ID: "a1", Role: models.RoleAdmin})
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana", svc.search)
}

func TestUserHandlerCount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewUserHandler(&userServiceStub{})

	c, w := newGinContext(http.MethodGet, "/users/count", nil)
	withPrincipal(c, models.Principal{ID: "sa", Role: models.RoleSuperAdmin})
	handler.Count(c)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["count"])
	assert.Equal(t, true, data["visible"])
}

func TestUserHandlerCreateForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &userServiceStub{createErr: appErrors.Clone(appErrors.ErrForbidden, "admins can only manage staff accounts")}
	handler := NewUserHandler(svc)

	c, w := newGinContext(http.MethodPost, "/users", []byte(`{"firstName":"Ana","role":"admin"}`))
	withPrincipal(c, models.Principal{ID: "a1", Role: models.RoleAdmin})
	handler.Create(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, models.RoleAdmin, svc.created.Role)
}

func TestUserHandlerProfilePicture(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &userServiceStub{}
	handler := NewUserHandler(svc)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "me.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("img"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/users/u-1/profile-picture", &body)
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())
	c.Params = gin.Params{{Key: "id", Value: "u-1"}}

	handler.UploadProfilePicture(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "me.png", svc.uploaded)

	c, w = newGinContext(http.MethodPatch, "/users/u-1/profile-picture?profilePictureUrl=https://cdn.test/x.jpg", nil)
	c.Params = gin.Params{{Key: "id", Value: "u-1"}}
	handler.SetProfilePicture(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://cdn.test/x.jpg", svc.pictureURL)
}

func TestUserHandlerProfilePictureMissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewUserHandler(&userServiceStub{})

	c, w := newGinContext(http.MethodPost, "/users/u-1/profile-picture", nil)
	c.Params = gin.Params{{Key: "id", Value: "u-1"}}
	handler.UploadProfilePicture(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

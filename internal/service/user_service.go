package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/findnest-api/internal/dto"
	"github.com/noah-isme/findnest-api/internal/models"
	"github.com/noah-isme/findnest-api/internal/repository"
	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
)

type userStore interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, in repository.UserWrite) (*models.User, error)
	Update(ctx context.Context, id string, in repository.UserWrite) (*models.User, error)
	Delete(ctx context.Context, id string) error
	UpdateProfilePicture(ctx context.Context, id, pictureURL string) error
}

type userSnapshots interface {
	Users(ctx context.Context) ([]models.User, error)
}

type avatarUploader interface {
	UploadAvatar(ctx context.Context, userID string, file UploadFile) (string, error)
}

// UserService handles the user directory and account management workflows.
type UserService struct {
	store     userStore
	snapshots userSnapshots
	avatars   avatarUploader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(store userStore, snapshots userSnapshots, avatars avatarUploader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &UserService{store: store, snapshots: snapshots, avatars: avatars, cache: cache, validator: validate, logger: logger}
}

// Directory returns a page of users the caller may manage.
func (s *UserService) Directory(ctx context.Context, caller models.Principal, search string, page, pageSize int) ([]models.User, *models.Pagination, error) {
	users, err := s.snapshots.Users(ctx)
	if err != nil {
		return nil, nil, err
	}
	scoped := ScopeDirectory(users, caller, models.DirectoryQuery{Search: search})
	rows, pagination := Paginate(scoped, page, pageSize)
	return rows, pagination, nil
}

// Count returns the role-scoped user counter.
func (s *UserService) Count(ctx context.Context, caller models.Principal) (dto.UserCountResponse, error) {
	if caller.Role != models.RoleAdmin && caller.Role != models.RoleSuperAdmin {
		return dto.UserCountResponse{}, nil
	}
	users, err := s.snapshots.Users(ctx)
	if err != nil {
		return dto.UserCountResponse{}, err
	}
	count, visible := CountUsers(users, caller)
	return dto.UserCountResponse{Count: count, Visible: visible}, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	return s.store.Get(ctx, id)
}

// Create adds a new account. A password is required.
func (s *UserService) Create(ctx context.Context, req dto.UserRequest, caller models.Principal) (*models.User, error) {
	write, err := s.prepare(req, caller)
	if err != nil {
		return nil, err
	}
	if write.Password == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "password is required")
	}
	user, err := s.store.Create(ctx, write)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("user created", zap.String("user_id", string(user.ID)), zap.String("role", string(user.Role)), zap.String("actor_id", caller.ID))
	return user, nil
}

// Update modifies the account attributes. The password is only changed when provided.
func (s *UserService) Update(ctx context.Context, id string, req dto.UserRequest, caller models.Principal) (*models.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	write, err := s.prepare(req, caller)
	if err != nil {
		return nil, err
	}
	user, err := s.store.Update(ctx, id, write)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return user, nil
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id string, caller models.Principal) error {
	if !canManageUsers(caller) {
		return appErrors.Clone(appErrors.ErrForbidden, "staff accounts cannot manage users")
	}
	if id == caller.ID {
		return appErrors.Clone(appErrors.ErrValidation, "you cannot delete your own account")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.Info("user deleted", zap.String("user_id", id), zap.String("actor_id", caller.ID))
	return nil
}

// UploadProfilePicture stores a new avatar and points the account at it. When the backend
// rejects the update the previous picture is kept.
func (s *UserService) UploadProfilePicture(ctx context.Context, id string, file UploadFile) (string, error) {
	if s.avatars == nil {
		return "", appErrors.Clone(appErrors.ErrUnavailable, "image uploads are not configured")
	}
	pictureURL, err := s.avatars.UploadAvatar(ctx, id, file)
	if err != nil {
		return "", err
	}
	if err := s.SetProfilePicture(ctx, id, pictureURL); err != nil {
		return "", err
	}
	return pictureURL, nil
}

// SetProfilePicture records an already hosted picture URL.
func (s *UserService) SetProfilePicture(ctx context.Context, id, pictureURL string) error {
	if parsed, err := url.ParseRequestURI(pictureURL); err != nil || parsed.Host == "" {
		return appErrors.Clone(appErrors.ErrValidation, "profilePictureUrl must be an absolute URL")
	}
	if err := s.store.UpdateProfilePicture(ctx, id, pictureURL); err != nil {
		s.logger.Warn("profile picture update rejected", zap.String("user_id", id), zap.Error(err))
		return err
	}
	s.invalidate(ctx)
	return nil
}

// prepare validates the payload and applies the role assignment rules.
func (s *UserService) prepare(req dto.UserRequest, caller models.Principal) (repository.UserWrite, error) {
	if !canManageUsers(caller) {
		return repository.UserWrite{}, appErrors.Clone(appErrors.ErrForbidden, "staff accounts cannot manage users")
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.MiddleName = strings.TrimSpace(req.MiddleName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Role == "" {
		req.Role = models.RoleStaff
	}
	if caller.Role == models.RoleAdmin {
		req.Department = caller.Department
	}
	if err := s.validator.Struct(req); err != nil {
		return repository.UserWrite{}, validationError(err)
	}

	switch {
	case req.Role == models.RoleSuperAdmin && caller.Role != models.RoleSuperAdmin:
		return repository.UserWrite{}, appErrors.Clone(appErrors.ErrForbidden, "only a super admin can assign the superAdmin role")
	case caller.Role == models.RoleAdmin && req.Role != models.RoleStaff:
		return repository.UserWrite{}, appErrors.Clone(appErrors.ErrForbidden, "admins can only manage staff accounts")
	}

	return repository.UserWrite{
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		Username:   req.Username,
		Email:      req.Email,
		Department: canonical(models.Offices, req.Department),
		Role:       req.Role,
		Password:   req.Password,
	}, nil
}

func canManageUsers(caller models.Principal) bool {
	return caller.Role == models.RoleAdmin || caller.Role == models.RoleSuperAdmin
}

func (s *UserService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.logger.Warn("cache invalidation after user mutation failed", zap.Error(err))
	}
}

package repository

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/findnest-api/internal/models"
)

// UserRepository proxies user records held by the backend.
type UserRepository struct {
	backend Backend
}

// NewUserRepository constructs the repository.
func NewUserRepository(backend Backend) *UserRepository {
	return &UserRepository{backend: backend}
}

type wireUser struct {
	models.User
	UID models.ID `json:"uid"`
}

func (w wireUser) user() models.User {
	u := w.User
	if u.ID == "" {
		u.ID = w.UID
	}
	return u
}

// UserWrite is the create/update payload. Password is only sent on create.
type UserWrite struct {
	FirstName  string          `json:"firstName"`
	MiddleName string          `json:"middleName,omitempty"`
	LastName   string          `json:"lastName"`
	Username   string          `json:"username"`
	Email      string          `json:"email"`
	Department string          `json:"department"`
	Role       models.UserRole `json:"role"`
	Password   string          `json:"password,omitempty"`
}

// List returns every user.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var wire []wireUser
	if err := r.backend.Do(ctx, http.MethodGet, "/api/users", nil, nil, &wire); err != nil {
		return nil, mapBackendError(err, "list users")
	}
	users := make([]models.User, 0, len(wire))
	for _, w := range wire {
		users = append(users, w.user())
	}
	return users, nil
}

// Get fetches one user.
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	var wire wireUser
	if err := r.backend.Do(ctx, http.MethodGet, userPath(id), nil, nil, &wire); err != nil {
		return nil, mapBackendError(err, "get user")
	}
	u := wire.user()
	return &u, nil
}

// Create registers a new account.
func (r *UserRepository) Create(ctx context.Context, in UserWrite) (*models.User, error) {
	var wire wireUser
	if err := r.backend.Do(ctx, http.MethodPost, "/api/users", nil, in, &wire); err != nil {
		return nil, mapBackendError(err, "create user")
	}
	return userEcho(wire, "", in), nil
}

// Update replaces profile fields of an existing account.
func (r *UserRepository) Update(ctx context.Context, id string, in UserWrite) (*models.User, error) {
	var wire wireUser
	if err := r.backend.Do(ctx, http.MethodPut, userPath(id), nil, in, &wire); err != nil {
		return nil, mapBackendError(err, "update user")
	}
	return userEcho(wire, id, in), nil
}

// Delete removes an account.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := r.backend.Do(ctx, http.MethodDelete, userPath(id), nil, nil, nil); err != nil {
		return mapBackendError(err, "delete user")
	}
	return nil
}

// UpdateProfilePicture points the account's avatar at pictureURL.
func (r *UserRepository) UpdateProfilePicture(ctx context.Context, id, pictureURL string) error {
	query := url.Values{"profilePictureUrl": {pictureURL}}
	if err := r.backend.Do(ctx, http.MethodPatch, userPath(id)+"/profile-picture", query, nil, nil); err != nil {
		return mapBackendError(err, "update profile picture")
	}
	return nil
}

func userEcho(wire wireUser, id string, in UserWrite) *models.User {
	u := wire.user()
	if u.ID == "" && u.Username == "" {
		u = models.User{
			ID:         models.ID(id),
			FirstName:  in.FirstName,
			MiddleName: in.MiddleName,
			LastName:   in.LastName,
			Username:   in.Username,
			Email:      in.Email,
			Department: in.Department,
			Role:       in.Role,
		}
	}
	return &u
}

func userPath(id string) string {
	return "/api/users/" + url.PathEscape(id)
}

package dto

import "github.com/noah-isme/findnest-api/internal/models"

// UserRequest is the create/update payload for an account.
type UserRequest struct {
	FirstName  string          `json:"firstName" validate:"required,max=60"`
	MiddleName string          `json:"middleName" validate:"max=60"`
	LastName   string          `json:"lastName" validate:"required,max=60"`
	Username   string          `json:"username" validate:"required,max=60"`
	Email      string          `json:"email" validate:"required,email"`
	Department string          `json:"department" validate:"required,office"`
	Role       models.UserRole `json:"role" validate:"omitempty,userrole"`
	Password   string          `json:"password,omitempty" validate:"omitempty,min=6"`
}

// UserCountResponse reports the role-scoped user counter.
type UserCountResponse struct {
	Count   int  `json:"count"`
	Visible bool `json:"visible"`
}

// ProfilePictureResponse is returned after an avatar update.
type ProfilePictureResponse struct {
	ProfilePicture string `json:"profilePicture"`
}

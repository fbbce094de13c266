package models

import "strings"

// UserRole determines dashboard scope and user management rights.
type UserRole string

const (
	RoleStaff      UserRole = "staff"
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "superAdmin"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStaff, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User is an account record owned by the backend.
type User struct {
	ID             ID       `json:"id"`
	FirstName      string   `json:"firstName"`
	MiddleName     string   `json:"middleName,omitempty"`
	LastName       string   `json:"lastName"`
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	Department     string   `json:"department"`
	Role           UserRole `json:"role"`
	ProfilePicture string   `json:"profilePicture,omitempty"`
}

// FullName joins the name parts, skipping blanks.
func (u User) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.FirstName, u.MiddleName, u.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

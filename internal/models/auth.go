package models

import "github.com/golang-jwt/jwt/v5"

// Principal is the signed-in caller as asserted by the identity provider.
type Principal struct {
	ID             string   `json:"id"`
	Role           UserRole `json:"role"`
	Department     string   `json:"department"`
	Email          string   `json:"email"`
	Username       string   `json:"username"`
	ProfilePicture string   `json:"profilePicture,omitempty"`
}

// JWTClaims is the bearer token payload issued by the identity provider.
type JWTClaims struct {
	UserID         string   `json:"user_id"`
	Role           UserRole `json:"role"`
	Department     string   `json:"department"`
	Email          string   `json:"email"`
	Username       string   `json:"username"`
	ProfilePicture string   `json:"profilePicture,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts claims into the caller identity. The subject is used when user_id is absent.
func (c *JWTClaims) Principal() Principal {
	id := c.UserID
	if id == "" {
		id = c.Subject
	}
	return Principal{
		ID:             id,
		Role:           c.Role,
		Department:     c.Department,
		Email:          c.Email,
		Username:       c.Username,
		ProfilePicture: c.ProfilePicture,
	}
}

// Profile is the principal merged with the backend user record.
type Profile struct {
	Principal
	User *User `json:"user,omitempty"`
}

package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/enums"
)

// Profile is the caller-facing view of a user.
type Profile struct {
	ID           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Phone        *string        `json:"phone,omitempty"`
	Role         enums.UserRole `json:"role"`
	HostVerified bool           `json:"host_verified"`
	CreatedAt    time.Time      `json:"created_at"`
}

// FromModel projects a stored user into its public profile.
func FromModel(user *models.User) Profile {
	return Profile{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Phone:        user.Phone,
		Role:         user.Role,
		HostVerified: user.HostVerified,
		CreatedAt:    user.CreatedAt,
	}
}

// RegisterInput describes a signup request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    *string
}

// LoginInput describes a credentials check.
type LoginInput struct {
	Email    string
	Password string
}

// Session is a freshly minted token pair with the owning profile.
type Session struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	User         Profile `json:"user"`
}

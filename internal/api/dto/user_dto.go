package dto

import (
	"time"

	"github.com/spec-kit/repair-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and account info.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// CreateUserRequest payload for the admin user-management endpoints.
type CreateUserRequest struct {
	Username   string      `json:"username" validate:"required"`
	Name       string      `json:"name" validate:"required"`
	Role       domain.Role `json:"role" validate:"required"`
	Department string      `json:"department"`
	Region     string      `json:"region"`
	Password   string      `json:"password" validate:"required"`
}

// ChangePasswordRequest payload for self-service password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// ResetPasswordRequest payload for the admin reset.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// UserResponse is the account representation without credentials.
type UserResponse struct {
	Username   string      `json:"username"`
	Name       string      `json:"name"`
	Role       domain.Role `json:"role"`
	Department string      `json:"department,omitempty"`
	Region     string      `json:"region,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		Username:   user.Username,
		Name:       user.Name,
		Role:       user.Role,
		Department: user.Department,
		Region:     user.Region,
		CreatedAt:  user.CreatedAt,
	}
}

package auth

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const RoleAdmin Role = "ADMIN"

// AdminUser is a back-office account. There is no public registration;
// accounts are created by the seed command.
type AdminUser struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Email        string    `json:"email" gorm:"not null;uniqueIndex;size:255"`
	Name         string    `json:"name" gorm:"not null;size:255"`
	PasswordHash string    `json:"-" gorm:"not null;size:255"`
	Role         Role      `json:"role" gorm:"type:varchar(20);default:'ADMIN'"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginResponse carries the issued token and the authenticated user
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
	User        UserResponse `json:"user"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

func (u *AdminUser) ToResponse() UserResponse {
	return UserResponse{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}

// TableName specifies the table name for GORM
func (AdminUser) TableName() string {
	return "admin_users"
}

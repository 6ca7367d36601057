package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleWorker   = "worker"
	RoleEmployer = "employer"
	RoleAdmin    = "admin"
)

func IsValidRole(r string) bool {
	return r == RoleWorker || r == RoleEmployer || r == RoleAdmin
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Phone        *string   `json:"phone,omitempty"`
	Role         string    `json:"role"`
	Verified     bool      `json:"verified"`
	Skills       []string  `json:"skills"`
	Bio          *string   `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

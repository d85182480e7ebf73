package model

import "time"

// Role enumerates the user roles known to the platform.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleEmployer  Role = "employer"
	RoleCandidate Role = "candidate"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployer, RoleCandidate:
		return true
	}
	return false
}

// User represents a platform account.
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	DepartmentID *int      `json:"department_id,omitempty"`
	Department   *string   `json:"department_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Department groups candidate accounts.
type Department struct {
	ID          int    `json:"id"`
	Name        string `json:"department_name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=admin employer candidate"`
}

// LoginRequest is the payload for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateUserRequest is the admin payload for creating a user.
type CreateUserRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=255"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	Role         string `json:"role" binding:"required,oneof=admin employer candidate"`
	DepartmentID *int   `json:"department_id" binding:"omitempty"`
}

// UpdateUserRequest is the admin payload for updating a user.
type UpdateUserRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=255"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"omitempty,min=6"`
	Role         string `json:"role" binding:"omitempty,oneof=admin employer candidate"`
	DepartmentID *int   `json:"department_id" binding:"omitempty"`
}

// Package users implements account management for the admin panel.
package users

import "time"

// User is an account row joined with its assigned role.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	City         string    `json:"city,omitempty"`
	Image        string    `json:"image,omitempty"`
	IsActive     bool      `json:"is_active"`
	RoleID       int64     `json:"role_id,omitempty"`
	RoleName     string    `json:"role_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

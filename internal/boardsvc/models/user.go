package models

import (
	"time"
)

// User represents the users table in the database.
type User struct {
	UserId       int64     `json:"user_id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Status       string    `json:"status,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

package domain

import "time"

// User is an account that can own projects, create issues and author comments.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

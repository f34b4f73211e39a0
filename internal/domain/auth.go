package domain

import "time"

// Principal is the acting user resolved once at the request boundary and
// passed explicitly into every mutation.
type Principal struct {
	UserID int64
	Email  string
	Name   string
}

// Token represents issued authentication token metadata.
type Token struct {
	SubjectID int64
	Email     string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

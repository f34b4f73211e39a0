package domain

import "time"

// Project groups issues. Only the owner may update or delete it.
type Project struct {
	ID        int64
	Name      string
	OwnerID   int64
	OwnerName string
	CreatedAt time.Time
	UpdatedAt time.Time
}

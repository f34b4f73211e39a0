package dto

import "time"

// ProjectRequest payload.
type ProjectRequest struct {
	Name string `json:"name"`
}

// ProjectResponse view.
type ProjectResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id"`
	OwnerName string    `json:"owner_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

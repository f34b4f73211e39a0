package dto

import "time"

// CommentRequest payload for create and edit.
type CommentRequest struct {
	Content string `json:"content"`
}

// CommentResponse includes the author's display fields.
type CommentResponse struct {
	ID          int64     `json:"id"`
	IssueID     int64     `json:"issue_id"`
	Content     string    `json:"content"`
	AuthorID    int64     `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

package domain

import "time"

// Comment is a message on an issue. Only its author may edit or delete it.
type Comment struct {
	ID          int64
	IssueID     int64
	Content     string
	AuthorID    int64
	AuthorName  string
	AuthorEmail string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

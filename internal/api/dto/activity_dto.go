package dto

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// ActivityLogResponse is one audit trail entry.
type ActivityLogResponse struct {
	ID           int64               `json:"id"`
	IssueID      int64               `json:"issue_id"`
	ActivityType domain.ActivityType `json:"activity_type"`
	UserID       int64               `json:"user_id"`
	UserName     string              `json:"user_name"`
	OldValue     *string             `json:"old_value"`
	NewValue     *string             `json:"new_value"`
	CreatedAt    time.Time           `json:"created_at"`
}

package domain

import "time"

// ActivityType captures what changed in an activity log entry.
type ActivityType string

const (
	ActivityIssueCreated       ActivityType = "ISSUE_CREATED"
	ActivityTitleChanged       ActivityType = "TITLE_CHANGED"
	ActivityDescriptionChanged ActivityType = "DESCRIPTION_CHANGED"
	ActivityStatusChanged      ActivityType = "STATUS_CHANGED"
	ActivityPriorityChanged    ActivityType = "PRIORITY_CHANGED"
	ActivityAssigneeChanged    ActivityType = "ASSIGNEE_CHANGED"
	ActivityCommentAdded       ActivityType = "COMMENT_ADDED"
	ActivityCommentEdited      ActivityType = "COMMENT_EDITED"
	ActivityCommentDeleted     ActivityType = "COMMENT_DELETED"
)

// ActivityLog is an append-only audit entry for one change to an issue.
type ActivityLog struct {
	ID           int64
	IssueID      int64
	ActivityType ActivityType
	UserID       int64
	UserName     string
	OldValue     *string
	NewValue     *string
	CreatedAt    time.Time
}

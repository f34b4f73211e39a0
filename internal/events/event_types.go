package events

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCreated EventType = "CREATED"
	EventUpdated EventType = "UPDATED"
	EventDeleted EventType = "DELETED"
)

// TopicIssues carries every issue create, update and delete.
const TopicIssues = "issues"

// CommentsTopic is the per-issue comment feed.
func CommentsTopic(issueID int64) string {
	return fmt.Sprintf("issues/%d/comments", issueID)
}

// ActivitiesTopic is the per-issue audit feed.
func ActivitiesTopic(issueID int64) string {
	return fmt.Sprintf("issues/%d/activities", issueID)
}

// ValidTopic reports whether topic is one the service publishes to.
func ValidTopic(topic string) bool {
	if topic == TopicIssues {
		return true
	}
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != TopicIssues {
		return false
	}
	if id, err := strconv.ParseInt(parts[1], 10, 64); err != nil || id <= 0 {
		return false
	}
	return parts[2] == "comments" || parts[2] == "activities"
}

// Event represents a domain event emitted by services. It is never persisted.
type Event struct {
	ID        string          `json:"id"`
	Topic     string          `json:"topic"`
	Type      EventType       `json:"event_type"`
	SubjectID int64           `json:"subject_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEvent builds an envelope with a fresh id and encodes payload.
func NewEvent(topic string, eventType EventType, subjectID int64, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", topic, err)
	}
	return Event{
		ID:        uuid.NewString(),
		Topic:     topic,
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}, nil
}

// Decode unmarshals the payload into dst.
func (e Event) Decode(dst any) error {
	return json.Unmarshal(e.Payload, dst)
}

// IssuePayload is the denormalized issue snapshot. DELETED events carry only
// id, title, status, priority and project id.
type IssuePayload struct {
	ID           int64                `json:"id"`
	Title        string               `json:"title"`
	Description  *string              `json:"description,omitempty"`
	Status       domain.IssueStatus   `json:"status"`
	Priority     domain.IssuePriority `json:"priority"`
	ProjectID    int64                `json:"project_id"`
	ProjectName  string               `json:"project_name,omitempty"`
	CreatorID    int64                `json:"creator_id,omitempty"`
	CreatorName  string               `json:"creator_name,omitempty"`
	AssigneeID   *int64               `json:"assignee_id,omitempty"`
	AssigneeName *string              `json:"assignee_name,omitempty"`
	CreatedAt    *time.Time           `json:"created_at,omitempty"`
	UpdatedAt    *time.Time           `json:"updated_at,omitempty"`
}

// CommentPayload describes a comment. DELETED events carry id and author only.
type CommentPayload struct {
	ID          int64      `json:"id"`
	IssueID     int64      `json:"issue_id"`
	Content     string     `json:"content,omitempty"`
	AuthorID    int64      `json:"author_id"`
	AuthorName  string     `json:"author_name,omitempty"`
	AuthorEmail string     `json:"author_email,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// ActivityPayload mirrors an appended audit entry.
type ActivityPayload struct {
	ID           int64               `json:"id"`
	IssueID      int64               `json:"issue_id"`
	ActivityType domain.ActivityType `json:"activity_type"`
	UserID       int64               `json:"user_id"`
	UserName     string              `json:"user_name"`
	OldValue     *string             `json:"old_value"`
	NewValue     *string             `json:"new_value"`
	CreatedAt    time.Time           `json:"created_at"`
}

// NewIssuePayload snapshots a hydrated issue.
func NewIssuePayload(issue *domain.Issue) IssuePayload {
	createdAt, updatedAt := issue.CreatedAt, issue.UpdatedAt
	return IssuePayload{
		ID:           issue.ID,
		Title:        issue.Title,
		Description:  issue.Description,
		Status:       issue.Status,
		Priority:     issue.Priority,
		ProjectID:    issue.ProjectID,
		ProjectName:  issue.ProjectName,
		CreatorID:    issue.CreatorID,
		CreatorName:  issue.CreatorName,
		AssigneeID:   issue.AssigneeID,
		AssigneeName: issue.AssigneeName,
		CreatedAt:    &createdAt,
		UpdatedAt:    &updatedAt,
	}
}

// NewDeletedIssuePayload keeps the fields a subscriber needs once the row is gone.
func NewDeletedIssuePayload(issue *domain.Issue) IssuePayload {
	return IssuePayload{
		ID:        issue.ID,
		Title:     issue.Title,
		Status:    issue.Status,
		Priority:  issue.Priority,
		ProjectID: issue.ProjectID,
	}
}

// NewCommentPayload snapshots a comment with its author.
func NewCommentPayload(comment *domain.Comment) CommentPayload {
	createdAt, updatedAt := comment.CreatedAt, comment.UpdatedAt
	return CommentPayload{
		ID:          comment.ID,
		IssueID:     comment.IssueID,
		Content:     comment.Content,
		AuthorID:    comment.AuthorID,
		AuthorName:  comment.AuthorName,
		AuthorEmail: comment.AuthorEmail,
		CreatedAt:   &createdAt,
		UpdatedAt:   &updatedAt,
	}
}

// NewActivityPayload mirrors entry.
func NewActivityPayload(entry *domain.ActivityLog) ActivityPayload {
	return ActivityPayload{
		ID:           entry.ID,
		IssueID:      entry.IssueID,
		ActivityType: entry.ActivityType,
		UserID:       entry.UserID,
		UserName:     entry.UserName,
		OldValue:     entry.OldValue,
		NewValue:     entry.NewValue,
		CreatedAt:    entry.CreatedAt,
	}
}

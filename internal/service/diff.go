package service

import "github.com/spec-kit/issue-tracker/internal/domain"

// UnknownAssignee is recorded when an assignee id no longer resolves.
const UnknownAssignee = "Unknown"

// IssueSnapshot is the set of fields compared between two versions of an issue.
type IssueSnapshot struct {
	Title       string
	Description *string
	Status      domain.IssueStatus
	Priority    domain.IssuePriority
	AssigneeID  *int64
}

// SnapshotOf captures the comparable fields of issue.
func SnapshotOf(issue *domain.Issue) IssueSnapshot {
	snap := IssueSnapshot{
		Title:    issue.Title,
		Status:   issue.Status,
		Priority: issue.Priority,
	}
	if issue.Description != nil {
		d := *issue.Description
		snap.Description = &d
	}
	if issue.AssigneeID != nil {
		a := *issue.AssigneeID
		snap.AssigneeID = &a
	}
	return snap
}

// FieldChange is one audit entry produced by DiffIssue.
type FieldChange struct {
	Type     domain.ActivityType
	OldValue *string
	NewValue *string
}

// AssigneeNamer resolves an assignee id to a display name.
type AssigneeNamer func(id int64) string

// DiffIssue compares before and after in the order title, description,
// status, priority, assignee and returns one change per differing field.
// Assignee values are display names, never ids.
func DiffIssue(before, after IssueSnapshot, names AssigneeNamer) []FieldChange {
	var changes []FieldChange

	if before.Title != after.Title {
		changes = append(changes, FieldChange{
			Type:     domain.ActivityTitleChanged,
			OldValue: strPtr(before.Title),
			NewValue: strPtr(after.Title),
		})
	}

	// nil and "" are the same description.
	if deref(before.Description) != deref(after.Description) {
		changes = append(changes, FieldChange{
			Type:     domain.ActivityDescriptionChanged,
			OldValue: before.Description,
			NewValue: after.Description,
		})
	}

	if before.Status != after.Status {
		changes = append(changes, FieldChange{
			Type:     domain.ActivityStatusChanged,
			OldValue: strPtr(string(before.Status)),
			NewValue: strPtr(string(after.Status)),
		})
	}

	if before.Priority != after.Priority {
		changes = append(changes, FieldChange{
			Type:     domain.ActivityPriorityChanged,
			OldValue: strPtr(string(before.Priority)),
			NewValue: strPtr(string(after.Priority)),
		})
	}

	if !sameID(before.AssigneeID, after.AssigneeID) {
		changes = append(changes, FieldChange{
			Type:     domain.ActivityAssigneeChanged,
			OldValue: assigneeName(before.AssigneeID, names),
			NewValue: assigneeName(after.AssigneeID, names),
		})
	}

	return changes
}

func assigneeName(id *int64, names AssigneeNamer) *string {
	if id == nil {
		return nil
	}
	name := ""
	if names != nil {
		name = names(*id)
	}
	if name == "" {
		name = UnknownAssignee
	}
	return &name
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	return &s
}

package domain

import "time"

// IssueStatus enumerates lifecycle states for issues.
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "OPEN"
	IssueStatusInProgress IssueStatus = "IN_PROGRESS"
	IssueStatusResolved   IssueStatus = "RESOLVED"
	IssueStatusClosed     IssueStatus = "CLOSED"
)

// IssueStatuses lists statuses in their sort order.
var IssueStatuses = []IssueStatus{
	IssueStatusOpen,
	IssueStatusInProgress,
	IssueStatusResolved,
	IssueStatusClosed,
}

// IssuePriority enumerates urgency levels.
type IssuePriority string

const (
	IssuePriorityLow      IssuePriority = "LOW"
	IssuePriorityMedium   IssuePriority = "MEDIUM"
	IssuePriorityHigh     IssuePriority = "HIGH"
	IssuePriorityCritical IssuePriority = "CRITICAL"
)

// IssuePriorities lists priorities in their sort order.
var IssuePriorities = []IssuePriority{
	IssuePriorityLow,
	IssuePriorityMedium,
	IssuePriorityHigh,
	IssuePriorityCritical,
}

// Valid reports whether s is a known status.
func (s IssueStatus) Valid() bool {
	return s.Rank() >= 0
}

// Rank returns the ordinal used for sorting, or -1 when unknown.
func (s IssueStatus) Rank() int {
	for i, candidate := range IssueStatuses {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Valid reports whether p is a known priority.
func (p IssuePriority) Valid() bool {
	return p.Rank() >= 0
}

// Rank returns the ordinal used for sorting, or -1 when unknown.
func (p IssuePriority) Rank() int {
	for i, candidate := range IssuePriorities {
		if candidate == p {
			return i
		}
	}
	return -1
}

// Issue is a trackable unit of work inside a project. The name fields are
// populated by hydrated reads and are never persisted.
type Issue struct {
	ID           int64
	Title        string
	Description  *string
	Status       IssueStatus
	Priority     IssuePriority
	ProjectID    int64
	ProjectName  string
	CreatorID    int64
	CreatorName  string
	AssigneeID   *int64
	AssigneeName *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

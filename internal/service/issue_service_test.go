package service

import (
	"errors"
	"testing"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

func TestCreateIssueDefaultsAndAudit(t *testing.T) {
	env := newTestEnv(t)

	issue := env.createIssue(t, IssueInput{Title: "  Bug A  "})

	if issue.Title != "Bug A" {
		t.Errorf("expected trimmed title, got %q", issue.Title)
	}
	if issue.Status != domain.IssueStatusOpen || issue.Priority != domain.IssuePriorityMedium {
		t.Errorf("expected OPEN/MEDIUM defaults, got %s/%s", issue.Status, issue.Priority)
	}
	if issue.CreatorID != env.alice.UserID || issue.CreatorName != "Alice" || issue.ProjectName != "Tracker" {
		t.Errorf("issue not hydrated: %+v", issue)
	}

	logs := env.activities(t, issue.ID)
	if len(logs) != 1 || logs[0].ActivityType != domain.ActivityIssueCreated {
		t.Fatalf("expected one ISSUE_CREATED entry, got %+v", logs)
	}
	if logs[0].OldValue != nil || logs[0].NewValue != nil || logs[0].UserName != "Alice" {
		t.Errorf("unexpected created entry %+v", logs[0])
	}

	published := env.pub.onTopic(events.TopicIssues)
	if len(published) != 1 || published[0].Type != events.EventCreated || published[0].SubjectID != issue.ID {
		t.Fatalf("expected one CREATED event, got %+v", published)
	}
	var payload events.IssuePayload
	if err := published[0].Decode(&payload); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if payload.CreatorName != "Alice" || payload.Title != "Bug A" {
		t.Errorf("payload not denormalized: %+v", payload)
	}
	if len(env.pub.onTopic(events.ActivitiesTopic(issue.ID))) != 1 {
		t.Error("expected one activity event")
	}
}

func TestCreateIssueFailures(t *testing.T) {
	env := newTestEnv(t)
	missing := int64(999)

	tests := []struct {
		name     string
		actor    domain.Principal
		input    IssueInput
		code     string
		resource string
	}{
		{name: "blank title", actor: env.alice, input: IssueInput{Title: "  ", ProjectID: env.project.ID}, code: apperrors.CodeValidation},
		{name: "bad status", actor: env.alice, input: IssueInput{Title: "x", ProjectID: env.project.ID, Status: "DONE"}, code: apperrors.CodeValidation},
		{name: "missing project", actor: env.alice, input: IssueInput{Title: "x", ProjectID: missing}, code: apperrors.CodeNotFound, resource: "Project"},
		{name: "missing assignee", actor: env.alice, input: IssueInput{Title: "x", ProjectID: env.project.ID, AssigneeID: &missing}, code: apperrors.CodeNotFound, resource: "Assignee"},
		{name: "unresolvable actor", actor: domain.Principal{UserID: missing}, input: IssueInput{Title: "x", ProjectID: env.project.ID}, code: apperrors.CodeUnauthorized},
		{name: "no actor", actor: domain.Principal{}, input: IssueInput{Title: "x", ProjectID: env.project.ID}, code: apperrors.CodeUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.issues.CreateIssue(env.ctx, tt.actor, tt.input)
			if !apperrors.HasCode(err, tt.code) {
				t.Fatalf("expected %s, got %v", tt.code, err)
			}
			if tt.resource != "" && apperrors.Resource(err) != tt.resource {
				t.Errorf("expected resource %s, got %s", tt.resource, apperrors.Resource(err))
			}
		})
	}
}

func TestUpdateIssueStatusAndPriorityScenario(t *testing.T) {
	env := newTestEnv(t)
	issue := env.createIssue(t, IssueInput{Title: "Bug A"})

	updated, err := env.issues.UpdateIssue(env.ctx, env.alice, issue.ID, IssueInput{
		Title:    "Bug A",
		Status:   domain.IssueStatusResolved,
		Priority: domain.IssuePriorityHigh,
	})
	if err != nil {
		t.Fatalf("UpdateIssue failed: %v", err)
	}
	if updated.Status != domain.IssueStatusResolved || updated.Priority != domain.IssuePriorityHigh {
		t.Errorf("update not applied: %+v", updated)
	}

	logs := env.activities(t, issue.ID)
	if len(logs) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(logs), logs)
	}
	if countType(logs, domain.ActivityTitleChanged) != 0 {
		t.Error("unchanged title must not be logged")
	}
	for _, l := range logs {
		switch l.ActivityType {
		case domain.ActivityStatusChanged:
			if val(l.OldValue) != "OPEN" || val(l.NewValue) != "RESOLVED" {
				t.Errorf("status entry %s->%s", val(l.OldValue), val(l.NewValue))
			}
		case domain.ActivityPriorityChanged:
			if val(l.OldValue) != "MEDIUM" || val(l.NewValue) != "HIGH" {
				t.Errorf("priority entry %s->%s", val(l.OldValue), val(l.NewValue))
			}
		case domain.ActivityIssueCreated:
		default:
			t.Errorf("unexpected entry %s", l.ActivityType)
		}
	}

	issueEvents := env.pub.onTopic(events.TopicIssues)
	if len(issueEvents) != 2 || issueEvents[1].Type != events.EventUpdated {
		t.Errorf("expected CREATED then UPDATED, got %+v", issueEvents)
	}
}

func TestUpdateIssueNoOpRecordsNothing(t *testing.T) {
	env := newTestEnv(t)
	assignee := env.bob.UserID
	issue := env.createIssue(t, IssueInput{
		Title:       "Bug A",
		Description: ptr("details"),
		Priority:    domain.IssuePriorityLow,
		AssigneeID:  &assignee,
	})

	_, err := env.issues.UpdateIssue(env.ctx, env.alice, issue.ID, IssueInput{
		Title:       "Bug A",
		Description: ptr("details"),
		Status:      domain.IssueStatusOpen,
		Priority:    domain.IssuePriorityLow,
		AssigneeID:  &assignee,
	})
	if err != nil {
		t.Fatalf("UpdateIssue failed: %v", err)
	}
	if logs := env.activities(t, issue.ID); len(logs) != 1 {
		t.Fatalf("expected only ISSUE_CREATED, got %+v", logs)
	}
}

func TestUpdateIssueAssigneeUsesDisplayNames(t *testing.T) {
	env := newTestEnv(t)
	carol := env.addUser(t, "Carol", "carol@example.com")
	bob := env.bob.UserID
	issue := env.createIssue(t, IssueInput{Title: "Bug A", AssigneeID: &bob})

	if _, err := env.issues.UpdateIssue(env.ctx, env.alice, issue.ID, IssueInput{Title: "Bug A", AssigneeID: &carol.UserID}); err != nil {
		t.Fatalf("reassign failed: %v", err)
	}
	updated, err := env.issues.UpdateIssue(env.ctx, env.alice, issue.ID, IssueInput{Title: "Bug A"})
	if err != nil {
		t.Fatalf("unassign failed: %v", err)
	}
	if updated.AssigneeID != nil || updated.AssigneeName != nil {
		t.Errorf("omitted assignee should clear it, got %+v", updated)
	}

	var changes []domain.ActivityLog
	for _, l := range env.activities(t, issue.ID) {
		if l.ActivityType == domain.ActivityAssigneeChanged {
			changes = append(changes, l)
		}
	}
	if len(changes) != 2 {
		t.Fatalf("expected 2 assignee entries, got %+v", changes)
	}
	seen := map[string]bool{}
	for _, c := range changes {
		seen[val(c.OldValue)+"->"+val(c.NewValue)] = true
	}
	if !seen["Bob->Carol"] || !seen["Carol-><nil>"] {
		t.Errorf("expected name based entries, got %v", seen)
	}
}

func TestUpdateIssueDefaultsUnsetEnums(t *testing.T) {
	env := newTestEnv(t)
	issue := env.createIssue(t, IssueInput{Title: "Bug A", Status: domain.IssueStatusInProgress, Priority: domain.IssuePriorityCritical})

	updated, err := env.issues.UpdateIssue(env.ctx, env.alice, issue.ID, IssueInput{Title: "Bug A"})
	if err != nil {
		t.Fatalf("UpdateIssue failed: %v", err)
	}
	if updated.Status != domain.IssueStatusOpen || updated.Priority != domain.IssuePriorityMedium {
		t.Errorf("expected OPEN/MEDIUM, got %s/%s", updated.Status, updated.Priority)
	}
}

func TestUpdateIssueKeepsProjectAndCreator(t *testing.T) {
	env := newTestEnv(t)
	other, err := env.projects.CreateProject(env.ctx, env.bob, "Other")
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	issue := env.createIssue(t, IssueInput{Title: "Bug A"})

	updated, err := env.issues.UpdateIssue(env.ctx, env.bob, issue.ID, IssueInput{Title: "Bug A", ProjectID: other.ID})
	if err != nil {
		t.Fatalf("UpdateIssue failed: %v", err)
	}
	if updated.ProjectID != env.project.ID || updated.CreatorID != env.alice.UserID {
		t.Errorf("project and creator are immutable, got %+v", updated)
	}
}

func TestUpdateIssueFailures(t *testing.T) {
	env := newTestEnv(t)
	issue := env.createIssue(t, IssueInput{Title: "Bug A"})
	missing := int64(404)

	_, err := env.issues.UpdateIssue(env.ctx, env.alice, missing, IssueInput{Title: "x"})
	if !apperrors.HasCode(err, apperrors.CodeNotFound) || apperrors.Resource(err) != "Issue" {
		t.Errorf("expected NotFound Issue, got %v", err)
	}
	_, err = env.issues.UpdateIssue(env.ctx, env.alice, issue.ID, IssueInput{Title: "x", AssigneeID: &missing})
	if !apperrors.HasCode(err, apperrors.CodeNotFound) || apperrors.Resource(err) != "Assignee" {
		t.Errorf("expected NotFound Assignee, got %v", err)
	}
	if logs := env.activities(t, issue.ID); len(logs) != 1 {
		t.Errorf("failed updates must not be audited, got %+v", logs)
	}
}

func TestDeleteIssueCascadesAndPublishesSnapshot(t *testing.T) {
	env := newTestEnv(t)
	issue := env.createIssue(t, IssueInput{Title: "Bug A", Priority: domain.IssuePriorityHigh})
	if _, err := env.comments.CreateComment(env.ctx, env.bob, issue.ID, "first"); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	if err := env.issues.DeleteIssue(env.ctx, issue.ID); err != nil {
		t.Fatalf("DeleteIssue failed: %v", err)
	}

	if _, err := env.issues.GetIssue(env.ctx, issue.ID); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NotFound after delete, got %v", err)
	}
	if logs := env.activities(t, issue.ID); len(logs) != 0 {
		t.Errorf("activity logs should cascade, got %+v", logs)
	}
	if comments, _ := env.store.Comments().ListByIssue(env.ctx, issue.ID); len(comments) != 0 {
		t.Errorf("comments should cascade, got %+v", comments)
	}

	issueEvents := env.pub.onTopic(events.TopicIssues)
	last := issueEvents[len(issueEvents)-1]
	if last.Type != events.EventDeleted {
		t.Fatalf("expected DELETED, got %s", last.Type)
	}
	var payload events.IssuePayload
	if err := last.Decode(&payload); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if payload.ID != issue.ID || payload.Title != "Bug A" || payload.Priority != domain.IssuePriorityHigh || payload.ProjectID != env.project.ID {
		t.Errorf("unexpected snapshot %+v", payload)
	}

	if err := env.issues.DeleteIssue(env.ctx, issue.ID); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("second delete should be NotFound, got %v", err)
	}
}

func TestAuditFailureDoesNotFailMutation(t *testing.T) {
	env := newTestEnv(t, withActivityRepo(failingActivityRepo{}))

	issue, err := env.issues.CreateIssue(env.ctx, env.alice, IssueInput{Title: "Bug A", ProjectID: env.project.ID})
	if err != nil {
		t.Fatalf("CreateIssue should succeed despite audit failure: %v", err)
	}
	if _, err := env.issues.UpdateIssue(env.ctx, env.alice, issue.ID, IssueInput{Title: "Bug B"}); err != nil {
		t.Fatalf("UpdateIssue should succeed despite audit failure: %v", err)
	}
	if got := env.metrics.SideEffectFailures("audit"); got != 2 {
		t.Errorf("expected 2 audit failures counted, got %d", got)
	}
	if got := len(env.pub.onTopic(events.TopicIssues)); got != 2 {
		t.Errorf("notifications should still go out, got %d", got)
	}
}

func TestNotificationFailureDoesNotFailMutation(t *testing.T) {
	env := newTestEnv(t)
	env.pub.err = errors.New("queue full")

	if _, err := env.issues.CreateIssue(env.ctx, env.alice, IssueInput{Title: "Bug A", ProjectID: env.project.ID}); err != nil {
		t.Fatalf("CreateIssue should succeed despite publish failure: %v", err)
	}
	// one issue event plus one activity event
	if got := env.metrics.SideEffectFailures("notification"); got != 2 {
		t.Errorf("expected 2 notification failures, got %d", got)
	}
}

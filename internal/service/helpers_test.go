package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/observability"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/repository/memory"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) onTopic(topic string) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.events {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}

type failingActivityRepo struct{}

func (failingActivityRepo) Append(context.Context, *domain.ActivityLog) error {
	return errors.New("audit store unavailable")
}

func (failingActivityRepo) ListByIssue(context.Context, int64) ([]domain.ActivityLog, error) {
	return nil, errors.New("audit store unavailable")
}

type testEnv struct {
	ctx      context.Context
	clock    *testClock
	store    *memory.Store
	pub      *recordingPublisher
	metrics  *observability.Metrics
	activity *ActivityService
	issues   *IssueService
	comments *CommentService
	projects *ProjectService

	alice   domain.Principal
	bob     domain.Principal
	project *domain.Project
}

type envOption func(*ActivityDependencies)

func withActivityRepo(repo repository.ActivityLogRepository) envOption {
	return func(d *ActivityDependencies) { d.ActivityRepo = repo }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	clock := newTestClock()
	store := memory.NewWithClock(clock.Now)
	env := &testEnv{
		ctx:     context.Background(),
		clock:   clock,
		store:   store,
		pub:     &recordingPublisher{},
		metrics: observability.NewMetrics(),
	}

	activityDeps := ActivityDependencies{
		ActivityRepo: store.ActivityLogs(),
		UserRepo:     store.Users(),
		Publisher:    env.pub,
		Metrics:      env.metrics,
	}
	for _, opt := range opts {
		opt(&activityDeps)
	}
	env.activity = NewActivityService(activityDeps)
	env.issues = NewIssueService(IssueDependencies{
		IssueRepo:       store.Issues(),
		ProjectRepo:     store.Projects(),
		UserRepo:        store.Users(),
		Activity:        env.activity,
		Publisher:       env.pub,
		Metrics:         env.metrics,
		DefaultPageSize: 20,
		MaxPageSize:     50,
	})
	env.comments = NewCommentService(CommentDependencies{
		CommentRepo: store.Comments(),
		IssueRepo:   store.Issues(),
		UserRepo:    store.Users(),
		Activity:    env.activity,
		Publisher:   env.pub,
		Metrics:     env.metrics,
	})
	env.projects = NewProjectService(store.Projects(), store.Users())

	env.alice = env.addUser(t, "Alice", "alice@example.com")
	env.bob = env.addUser(t, "Bob", "bob@example.com")
	project, err := env.projects.CreateProject(env.ctx, env.alice, "Tracker")
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	env.project = project
	return env
}

func (e *testEnv) addUser(t *testing.T, name, email string) domain.Principal {
	t.Helper()
	user := &domain.User{Name: name, Email: email, PasswordHash: "x"}
	if err := e.store.Users().Create(e.ctx, user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return domain.Principal{UserID: user.ID, Email: user.Email, Name: user.Name}
}

func (e *testEnv) createIssue(t *testing.T, input IssueInput) *domain.Issue {
	t.Helper()
	if input.ProjectID == 0 {
		input.ProjectID = e.project.ID
	}
	issue, err := e.issues.CreateIssue(e.ctx, e.alice, input)
	if err != nil {
		t.Fatalf("CreateIssue failed: %v", err)
	}
	return issue
}

func (e *testEnv) activities(t *testing.T, issueID int64) []domain.ActivityLog {
	t.Helper()
	logs, err := e.activity.ListByIssue(e.ctx, issueID)
	if err != nil {
		t.Fatalf("ListByIssue failed: %v", err)
	}
	return logs
}

func countType(logs []domain.ActivityLog, activityType domain.ActivityType) int {
	n := 0
	for _, l := range logs {
		if l.ActivityType == activityType {
			n++
		}
	}
	return n
}

func ptr[T any](v T) *T {
	return &v
}

func val(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

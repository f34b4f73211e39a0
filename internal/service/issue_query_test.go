package service

import (
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

func TestBuildIssueSort(t *testing.T) {
	tests := []struct {
		field      string
		descending bool
		want       []repository.SortKey
	}{
		{"", false, []repository.SortKey{
			repository.Asc(repository.SortFieldCreatedAt),
			repository.Asc(repository.SortFieldID),
		}},
		{"createdAt", true, []repository.SortKey{
			repository.Desc(repository.SortFieldCreatedAt),
			repository.Asc(repository.SortFieldID),
		}},
		{"updatedAt", false, []repository.SortKey{
			repository.Asc(repository.SortFieldUpdatedAt),
			repository.Desc(repository.SortFieldCreatedAt),
			repository.Asc(repository.SortFieldID),
		}},
		{"status", true, []repository.SortKey{
			repository.Desc(repository.SortFieldStatus),
			repository.Desc(repository.SortFieldCreatedAt),
			repository.Asc(repository.SortFieldID),
		}},
		{"title", false, []repository.SortKey{
			repository.Asc(repository.SortFieldTitle),
			repository.Desc(repository.SortFieldCreatedAt),
			repository.Asc(repository.SortFieldID),
		}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.field, tt.descending), func(t *testing.T) {
			got, err := BuildIssueSort(tt.field, tt.descending)
			if err != nil {
				t.Fatalf("BuildIssueSort failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildIssueSortRejectsUnknownField(t *testing.T) {
	for _, field := range []string{"password_hash", "created_at", "id; DROP TABLE issues"} {
		if _, err := BuildIssueSort(field, false); !apperrors.HasCode(err, apperrors.CodeValidation) {
			t.Errorf("%q: expected VALIDATION_FAILED, got %v", field, err)
		}
	}
}

func TestListIssuesAppliesEveryFilter(t *testing.T) {
	env := newTestEnv(t)
	other, err := env.projects.CreateProject(env.ctx, env.alice, "Other")
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	bob := env.bob.UserID

	match := env.createIssue(t, IssueInput{Title: "Login CRASH", Status: domain.IssueStatusInProgress, Priority: domain.IssuePriorityHigh, AssigneeID: &bob})
	env.createIssue(t, IssueInput{Title: "login crash", Status: domain.IssueStatusOpen, Priority: domain.IssuePriorityHigh, AssigneeID: &bob})
	env.createIssue(t, IssueInput{Title: "login crash", Status: domain.IssueStatusInProgress, Priority: domain.IssuePriorityLow, AssigneeID: &bob})
	env.createIssue(t, IssueInput{Title: "login crash", Status: domain.IssueStatusInProgress, Priority: domain.IssuePriorityHigh})
	env.createIssue(t, IssueInput{Title: "login crash", Status: domain.IssueStatusInProgress, Priority: domain.IssuePriorityHigh, AssigneeID: &bob, ProjectID: other.ID})
	env.createIssue(t, IssueInput{Title: "signup bug", Status: domain.IssueStatusInProgress, Priority: domain.IssuePriorityHigh, AssigneeID: &bob})

	page, err := env.issues.ListIssues(env.ctx, IssueListQuery{
		Status:     ptr(domain.IssueStatusInProgress),
		Priority:   ptr(domain.IssuePriorityHigh),
		AssigneeID: &bob,
		ProjectID:  &env.project.ID,
		Search:     ptr("Crash"),
	})
	if err != nil {
		t.Fatalf("ListIssues failed: %v", err)
	}
	if page.TotalElements != 1 || len(page.Content) != 1 || page.Content[0].ID != match.ID {
		t.Fatalf("expected only issue %d, got %+v", match.ID, page.Content)
	}

	all, err := env.issues.ListIssues(env.ctx, IssueListQuery{})
	if err != nil {
		t.Fatalf("ListIssues failed: %v", err)
	}
	if all.TotalElements != 6 {
		t.Errorf("no filters should return everything, got %d", all.TotalElements)
	}
}

func TestListIssuesPaginationIsStable(t *testing.T) {
	env := newTestEnv(t)
	statuses := domain.IssueStatuses
	want := map[int64]bool{}
	for i := 0; i < 23; i++ {
		// timestamps collide in groups of four
		if i%4 == 0 {
			env.clock.Advance(time.Second)
		}
		issue := env.createIssue(t, IssueInput{Title: "same", Status: statuses[i%2]})
		want[issue.ID] = true
	}

	for _, sortField := range []string{"createdAt", "updatedAt", "status", "priority", "title"} {
		for _, dir := range []string{"asc", "desc"} {
			t.Run(sortField+"/"+dir, func(t *testing.T) {
				seen := map[int64]int{}
				var order []int64
				for pageNo := 0; ; pageNo++ {
					page, err := env.issues.ListIssues(env.ctx, IssueListQuery{
						Page:          pageNo,
						PageSize:      5,
						SortField:     sortField,
						SortDirection: dir,
					})
					if err != nil {
						t.Fatalf("ListIssues failed: %v", err)
					}
					if page.TotalElements != 23 || page.TotalPages != 5 {
						t.Fatalf("unexpected counters %+v", page)
					}
					for _, issue := range page.Content {
						seen[issue.ID]++
						order = append(order, issue.ID)
					}
					if page.Last {
						if pageNo != 4 || len(page.Content) != 3 {
							t.Fatalf("last page %d had %d items", pageNo, len(page.Content))
						}
						break
					}
				}
				if len(seen) != len(want) {
					t.Fatalf("expected %d distinct issues, got %d", len(want), len(seen))
				}
				for id, n := range seen {
					if n != 1 || !want[id] {
						t.Errorf("issue %d seen %d times", id, n)
					}
				}
				again, err := env.issues.ListIssues(env.ctx, IssueListQuery{PageSize: 50, SortField: sortField, SortDirection: dir})
				if err != nil {
					t.Fatalf("ListIssues failed: %v", err)
				}
				for i, issue := range again.Content {
					if order[i] != issue.ID {
						t.Fatalf("paged order diverges from single page at %d", i)
					}
				}
			})
		}
	}
}

func TestListIssuesEnumSortUsesDeclarationOrder(t *testing.T) {
	env := newTestEnv(t)
	for _, p := range []domain.IssuePriority{domain.IssuePriorityCritical, domain.IssuePriorityLow, domain.IssuePriorityHigh, domain.IssuePriorityMedium} {
		env.createIssue(t, IssueInput{Title: string(p), Priority: p})
	}
	page, err := env.issues.ListIssues(env.ctx, IssueListQuery{SortField: "priority"})
	if err != nil {
		t.Fatalf("ListIssues failed: %v", err)
	}
	var got []domain.IssuePriority
	for _, issue := range page.Content {
		got = append(got, issue.Priority)
	}
	if !reflect.DeepEqual(got, domain.IssuePriorities) {
		t.Errorf("expected %v, got %v", domain.IssuePriorities, got)
	}
}

func TestListIssuesPageSizeBounds(t *testing.T) {
	env := newTestEnv(t)
	env.createIssue(t, IssueInput{Title: "one"})

	page, err := env.issues.ListIssues(env.ctx, IssueListQuery{PageSize: 1000})
	if err != nil {
		t.Fatalf("ListIssues failed: %v", err)
	}
	if page.PageSize != 50 {
		t.Errorf("expected clamp to 50, got %d", page.PageSize)
	}
	page, err = env.issues.ListIssues(env.ctx, IssueListQuery{})
	if err != nil {
		t.Fatalf("ListIssues failed: %v", err)
	}
	if page.PageSize != 20 || page.Page != 0 || !page.Last {
		t.Errorf("unexpected defaults %+v", page)
	}

	if _, err := env.issues.ListIssues(env.ctx, IssueListQuery{Page: -1}); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("negative page should fail validation, got %v", err)
	}
	if _, err := env.issues.ListIssues(env.ctx, IssueListQuery{SortField: "bogus"}); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("unknown sort should fail validation, got %v", err)
	}
}

func TestListIssuesPagePastTheEnd(t *testing.T) {
	env := newTestEnv(t)
	env.createIssue(t, IssueInput{Title: "only"})

	for _, pageIndex := range []int{1, 1 << 59, 1 << 62, math.MaxInt} {
		page, err := env.issues.ListIssues(env.ctx, IssueListQuery{Page: pageIndex, PageSize: 20})
		if err != nil {
			t.Fatalf("page %d: ListIssues failed: %v", pageIndex, err)
		}
		if len(page.Content) != 0 || !page.Last || page.TotalElements != 1 || page.Page != pageIndex {
			t.Errorf("page %d: expected empty last page, got %+v", pageIndex, page)
		}
	}
}

func TestListIssuesSearchKeepsSurroundingSpaces(t *testing.T) {
	env := newTestEnv(t)
	spaced := env.createIssue(t, IssueInput{Title: "fix bug in parser"})
	env.createIssue(t, IssueInput{Title: "bug"})

	page, err := env.issues.ListIssues(env.ctx, IssueListQuery{Search: ptr(" bug")})
	if err != nil {
		t.Fatalf("ListIssues failed: %v", err)
	}
	if page.TotalElements != 1 || page.Content[0].ID != spaced.ID {
		t.Errorf("expected only %q to match, got %+v", spaced.Title, page.Content)
	}

	all, err := env.issues.ListIssues(env.ctx, IssueListQuery{Search: ptr("   ")})
	if err != nil {
		t.Fatalf("ListIssues failed: %v", err)
	}
	if all.TotalElements != 2 {
		t.Errorf("blank search should not filter, got %d", all.TotalElements)
	}
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

var issueSortColumns = map[SortField]string{
	SortFieldID:        "i.id",
	SortFieldCreatedAt: "i.created_at",
	SortFieldUpdatedAt: "i.updated_at",
	SortFieldTitle:     "i.title",
	SortFieldStatus:    rankExpression("i.status", statusNames()),
	SortFieldPriority:  rankExpression("i.priority", priorityNames()),
}

const issueWithPeopleSelect = `
        SELECT i.id, i.title, i.description, i.status, i.priority,
               i.project_id, p.name, i.creator_id, c.name, i.assignee_id, a.name,
               i.created_at, i.updated_at
        FROM issues i
        JOIN projects p ON p.id = i.project_id
        JOIN users c ON c.id = i.creator_id
        LEFT JOIN users a ON a.id = i.assignee_id`

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (title, description, status, priority, project_id, creator_id, assignee_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		issue.Title,
		issue.Description,
		issue.Status,
		issue.Priority,
		issue.ProjectID,
		issue.CreatorID,
		issue.AssigneeID,
	).Scan(&issue.ID, &issue.CreatedAt, &issue.UpdatedAt)
}

// Update rewrites the mutable columns. project_id and creator_id are fixed at creation.
func (r *issueRepository) Update(ctx context.Context, issue *domain.Issue) error {
	const query = `
        UPDATE issues SET title=$1, description=$2, status=$3, priority=$4,
            assignee_id=$5, updated_at=clock_timestamp()
        WHERE id=$6
        RETURNING updated_at`
	if err := r.pool.QueryRow(ctx, query,
		issue.Title,
		issue.Description,
		issue.Status,
		issue.Priority,
		issue.AssigneeID,
		issue.ID,
	).Scan(&issue.UpdatedAt); err != nil {
		return translateErr(err)
	}
	return nil
}

func (r *issueRepository) GetByID(ctx context.Context, id int64) (*domain.Issue, error) {
	const query = `
        SELECT id, title, description, status, priority, project_id, creator_id, assignee_id,
               created_at, updated_at
        FROM issues WHERE id=$1`
	var issue domain.Issue
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&issue.ID,
		&issue.Title,
		&issue.Description,
		&issue.Status,
		&issue.Priority,
		&issue.ProjectID,
		&issue.CreatorID,
		&issue.AssigneeID,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	); err != nil {
		return nil, translateErr(err)
	}
	return &issue, nil
}

func (r *issueRepository) GetByIDWithPeople(ctx context.Context, id int64) (*domain.Issue, error) {
	rows, err := r.pool.Query(ctx, issueWithPeopleSelect+` WHERE i.id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	issues, err := scanIssues(rows)
	if err != nil {
		return nil, err
	}
	if len(issues) == 0 {
		return nil, ErrNotFound
	}
	return &issues[0], nil
}

func (r *issueRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM issues WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *issueRepository) ListWithFilter(ctx context.Context, filter IssueFilter) (*Page[domain.Issue], error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("i.status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("i.priority=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("i.assignee_id=$%d", len(args)))
	}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		clauses = append(clauses, fmt.Sprintf("i.project_id=$%d", len(args)))
	}
	if filter.SearchTerm != nil && *filter.SearchTerm != "" {
		args = append(args, *filter.SearchTerm)
		clauses = append(clauses, fmt.Sprintf("strpos(LOWER(i.title), LOWER($%d)) > 0", len(args)))
	}
	where := strings.Join(clauses, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM issues i WHERE `+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	sort := filter.Sort
	if len(sort) == 0 {
		sort = []SortKey{Asc(SortFieldCreatedAt), Asc(SortFieldID)}
	}
	orderBy, err := orderByClause(sort, issueSortColumns)
	if err != nil {
		return nil, err
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		issueWithPeopleSelect, where, orderBy, pageSize, Offset(filter.Page, pageSize))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	issues, err := scanIssues(rows)
	if err != nil {
		return nil, err
	}
	return NewPage(issues, filter.Page, pageSize, total), nil
}

func scanIssues(rows pgx.Rows) ([]domain.Issue, error) {
	var result []domain.Issue
	for rows.Next() {
		var issue domain.Issue
		if err := rows.Scan(
			&issue.ID,
			&issue.Title,
			&issue.Description,
			&issue.Status,
			&issue.Priority,
			&issue.ProjectID,
			&issue.ProjectName,
			&issue.CreatorID,
			&issue.CreatorName,
			&issue.AssigneeID,
			&issue.AssigneeName,
			&issue.CreatedAt,
			&issue.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, issue)
	}
	return result, rows.Err()
}

func statusNames() []string {
	names := make([]string, len(domain.IssueStatuses))
	for i, status := range domain.IssueStatuses {
		names[i] = string(status)
	}
	return names
}

func priorityNames() []string {
	names := make([]string, len(domain.IssuePriorities))
	for i, priority := range domain.IssuePriorities {
		names[i] = string(priority)
	}
	return names
}

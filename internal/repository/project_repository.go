package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

var projectSortColumns = map[SortField]string{
	SortFieldID:        "p.id",
	SortFieldName:      "p.name",
	SortFieldCreatedAt: "p.created_at",
	SortFieldUpdatedAt: "p.updated_at",
}

const projectSelect = `
        SELECT p.id, p.name, p.owner_id, u.name, p.created_at, p.updated_at
        FROM projects p JOIN users u ON u.id = p.owner_id`

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository builds repository.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	const query = `
        INSERT INTO projects (name, owner_id)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, project.Name, project.OwnerID).
		Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	const query = `
        UPDATE projects SET name=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING updated_at`
	if err := r.pool.QueryRow(ctx, query, project.Name, project.ID).Scan(&project.UpdatedAt); err != nil {
		return translateErr(err)
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	var project domain.Project
	if err := r.pool.QueryRow(ctx, projectSelect+` WHERE p.id=$1`, id).Scan(
		&project.ID,
		&project.Name,
		&project.OwnerID,
		&project.OwnerName,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		return nil, translateErr(err)
	}
	return &project, nil
}

func (r *projectRepository) List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, strings.TrimSpace(*filter.SearchTerm))
		clauses = append(clauses, fmt.Sprintf("strpos(LOWER(p.name), LOWER($%d)) > 0", len(args)))
	}
	sort := filter.Sort
	if len(sort) == 0 {
		sort = []SortKey{Asc(SortFieldName), Asc(SortFieldID)}
	}
	orderBy, err := orderByClause(sort, projectSortColumns)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s`, projectSelect, strings.Join(clauses, " AND "), orderBy)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Project{}
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(
			&project.ID,
			&project.Name,
			&project.OwnerID,
			&project.OwnerName,
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, project)
	}
	return result, rows.Err()
}

func (r *projectRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

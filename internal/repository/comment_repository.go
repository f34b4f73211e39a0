package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

const commentWithAuthorSelect = `
        SELECT c.id, c.issue_id, c.content, c.author_id, u.name, u.email, c.created_at, c.updated_at
        FROM comments c JOIN users u ON u.id = c.author_id`

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (issue_id, author_id, content)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		comment.IssueID,
		comment.AuthorID,
		comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	const query = `
        UPDATE comments SET content=$1, updated_at=clock_timestamp()
        WHERE id=$2
        RETURNING updated_at`
	if err := r.pool.QueryRow(ctx, query, comment.Content, comment.ID).Scan(&comment.UpdatedAt); err != nil {
		return translateErr(err)
	}
	return nil
}

func (r *commentRepository) GetByIDWithAuthor(ctx context.Context, id int64) (*domain.Comment, error) {
	var comment domain.Comment
	if err := r.pool.QueryRow(ctx, commentWithAuthorSelect+` WHERE c.id=$1`, id).Scan(
		&comment.ID,
		&comment.IssueID,
		&comment.Content,
		&comment.AuthorID,
		&comment.AuthorName,
		&comment.AuthorEmail,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	); err != nil {
		return nil, translateErr(err)
	}
	return &comment, nil
}

func (r *commentRepository) ListByIssue(ctx context.Context, issueID int64) ([]domain.Comment, error) {
	rows, err := r.pool.Query(ctx, commentWithAuthorSelect+` WHERE c.issue_id=$1 ORDER BY c.created_at ASC, c.id ASC`, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Comment{}
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.IssueID,
			&comment.Content,
			&comment.AuthorID,
			&comment.AuthorName,
			&comment.AuthorEmail,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

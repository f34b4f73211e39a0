package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

type activityLogRepository struct {
	pool *pgxpool.Pool
}

// NewActivityLogRepository builds repository.
func NewActivityLogRepository(pool *pgxpool.Pool) ActivityLogRepository {
	return &activityLogRepository{pool: pool}
}

// Append runs in a transaction of its own, separate from whatever wrote the
// issue or comment, so an audit failure never rolls back the primary write.
func (r *activityLogRepository) Append(ctx context.Context, entry *domain.ActivityLog) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var issueID int64
	if err = tx.QueryRow(ctx, `SELECT id FROM issues WHERE id=$1 FOR KEY SHARE`, entry.IssueID).Scan(&issueID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
		}
		return err
	}

	const insert = `
        INSERT INTO activity_logs (issue_id, activity_type, user_id, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, (SELECT name FROM users WHERE id=$3)`
	if err = tx.QueryRow(ctx, insert,
		issueID,
		entry.ActivityType,
		entry.UserID,
		entry.OldValue,
		entry.NewValue,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UserName); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *activityLogRepository) ListByIssue(ctx context.Context, issueID int64) ([]domain.ActivityLog, error) {
	const query = `
        SELECT l.id, l.issue_id, l.activity_type, l.user_id, u.name, l.old_value, l.new_value, l.created_at
        FROM activity_logs l JOIN users u ON u.id = l.user_id
        WHERE l.issue_id=$1
        ORDER BY l.created_at DESC, l.id ASC`
	rows, err := r.pool.Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ActivityLog{}
	for rows.Next() {
		var entry domain.ActivityLog
		if err := rows.Scan(
			&entry.ID,
			&entry.IssueID,
			&entry.ActivityType,
			&entry.UserID,
			&entry.UserName,
			&entry.OldValue,
			&entry.NewValue,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

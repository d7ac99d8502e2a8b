package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-service/internal/domain"
)

// ActivityRepository stores audit entries. The log is write-once, read-many:
// no update or delete exists.
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
	ListByIssue(ctx context.Context, issueID, organizationID string) ([]domain.Activity, error)
}

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository builds repository.
func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	const query = `
        INSERT INTO activities (issue_id, field, old_value, new_value, organization_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		activity.IssueID,
		activity.Field,
		activity.OldValue,
		activity.NewValue,
		activity.OrganizationID,
	).Scan(&activity.ID, &activity.CreatedAt)
}

// ListByIssue filters on both issue and organization so guessed issue ids
// never surface cross-tenant rows.
func (r *activityRepository) ListByIssue(ctx context.Context, issueID, organizationID string) ([]domain.Activity, error) {
	const query = `
        SELECT id, issue_id, field, old_value, new_value, organization_id, created_at
        FROM activities WHERE issue_id=$1 AND organization_id=$2 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, issueID, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Activity
	for rows.Next() {
		var activity domain.Activity
		if err := rows.Scan(
			&activity.ID,
			&activity.IssueID,
			&activity.Field,
			&activity.OldValue,
			&activity.NewValue,
			&activity.OrganizationID,
			&activity.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, activity)
	}
	return result, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ms0ur/timeflow/internal/model"
)

type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

const activityColumns = `id, user_id, parent_id, name, icon, color, is_default, created_at`

func (r *ActivityRepository) Insert(ctx context.Context, activity *model.Activity) error {
	var parentID interface{}
	if activity.ParentID != nil {
		parentID = *activity.ParentID
	}
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO activities (id, user_id, parent_id, name, icon, color, is_default, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		activity.ID,
		activity.UserID,
		parentID,
		activity.Name,
		activity.Icon,
		activity.Color,
		boolToInt(activity.IsDefault),
		formatTime(activity.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) Update(ctx context.Context, activity *model.Activity) error {
	var parentID interface{}
	if activity.ParentID != nil {
		parentID = *activity.ParentID
	}
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE activities
		 SET parent_id = ?, name = ?, icon = ?, color = ?, is_default = ?
		 WHERE id = ?`,
		parentID,
		activity.Name,
		activity.Icon,
		activity.Color,
		boolToInt(activity.IsDefault),
		activity.ID,
	)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	return nil
}

// Delete removes the activity; children and their sessions cascade via
// foreign keys.
func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) ListByUser(ctx context.Context, userID string) ([]model.Activity, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+activityColumns+` FROM activities WHERE user_id = ? ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	activities := make([]model.Activity, 0)
	for rows.Next() {
		activity, scanErr := scanActivity(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		activities = append(activities, *activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return activities, nil
}

func (r *ActivityRepository) GetOwned(ctx context.Context, id, userID string) (*model.Activity, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+activityColumns+` FROM activities WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	return scanActivity(row)
}

// GetOwnedTx is the ownership check used inside reconciliation
// transactions: the target must exist and belong to the user.
func (r *ActivityRepository) GetOwnedTx(ctx context.Context, tx *sql.Tx, id, userID string) (*model.Activity, error) {
	row := tx.QueryRowContext(
		ctx,
		`SELECT `+activityColumns+` FROM activities WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	return scanActivity(row)
}

func (r *ActivityRepository) GetDefault(ctx context.Context, userID string) (*model.Activity, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+activityColumns+` FROM activities WHERE user_id = ? AND is_default = 1`,
		userID,
	)
	return scanActivity(row)
}

// ClearDefault unsets the default flag on every activity of the user,
// so at most one default survives the subsequent update.
func (r *ActivityRepository) ClearDefault(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE activities SET is_default = 0 WHERE user_id = ? AND is_default = 1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("clear default activity: %w", err)
	}
	return nil
}

func scanActivity(s scanner) (*model.Activity, error) {
	var activity model.Activity
	var parentID sql.NullString
	var isDefault int
	var createdAt string
	err := s.Scan(
		&activity.ID,
		&activity.UserID,
		&parentID,
		&activity.Name,
		&activity.Icon,
		&activity.Color,
		&isDefault,
		&createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan activity: %w", err)
	}

	if parentID.Valid {
		value := parentID.String
		activity.ParentID = &value
	}
	activity.IsDefault = isDefault != 0

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse activity created_at: %w", err)
	}
	activity.CreatedAt = parsedCreatedAt

	return &activity, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

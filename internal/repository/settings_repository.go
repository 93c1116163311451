package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ms0ur/timeflow/internal/model"
)

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) GetByUser(ctx context.Context, userID string) (*model.UserSettings, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, user_id, week_start_day, day_start_hour, updated_at
		 FROM user_settings
		 WHERE user_id = ?`,
		userID,
	)

	var settings model.UserSettings
	var updatedAt string
	err := row.Scan(&settings.ID, &settings.UserID, &settings.WeekStartDay, &settings.DayStartHour, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user settings: %w", err)
	}

	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse settings updated_at: %w", err)
	}
	settings.UpdatedAt = parsedUpdatedAt

	return &settings, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, settings *model.UserSettings) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO user_settings (id, user_id, week_start_day, day_start_hour, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		     week_start_day = excluded.week_start_day,
		     day_start_hour = excluded.day_start_hour,
		     updated_at = excluded.updated_at`,
		settings.ID,
		settings.UserID,
		settings.WeekStartDay,
		settings.DayStartHour,
		formatTime(settings.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert user settings: %w", err)
	}
	return nil
}

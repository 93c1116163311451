package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/ms0ur/timeflow/internal/errors"
	"github.com/ms0ur/timeflow/internal/model"
	"github.com/ms0ur/timeflow/internal/repository"
)

type SettingsService struct {
	repo *repository.SettingsRepository
}

func NewSettingsService(repo *repository.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

type SettingsView struct {
	WeekStartDay int `json:"weekStartDay"`
	DayStartHour int `json:"dayStartHour"`
}

type UpdateSettingsInput struct {
	WeekStartDay *int
	DayStartHour *int
}

// Get returns stored settings, or the defaults when the user never
// saved any.
func (s *SettingsService) Get(ctx context.Context, userID string) (*SettingsView, *apperrors.APIError) {
	settings, err := s.repo.GetByUser(ctx, userID)
	if err == repository.ErrNotFound {
		return &SettingsView{
			WeekStartDay: model.DefaultWeekStartDay,
			DayStartHour: model.DefaultDayStartHour,
		}, nil
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get settings")
	}
	return &SettingsView{
		WeekStartDay: settings.WeekStartDay,
		DayStartHour: settings.DayStartHour,
	}, nil
}

func (s *SettingsService) Update(ctx context.Context, userID string, input UpdateSettingsInput) (*SettingsView, *apperrors.APIError) {
	if input.WeekStartDay != nil && (*input.WeekStartDay < 0 || *input.WeekStartDay > 6) {
		return nil, apperrors.BadRequest("invalid_week_start", "weekStartDay must be between 0 (Sunday) and 6 (Saturday)")
	}
	if input.DayStartHour != nil && (*input.DayStartHour < 0 || *input.DayStartHour > 23) {
		return nil, apperrors.BadRequest("invalid_day_start", "dayStartHour must be between 0 and 23")
	}

	settings, err := s.repo.GetByUser(ctx, userID)
	if err == repository.ErrNotFound {
		settings = &model.UserSettings{
			ID:           uuid.NewString(),
			UserID:       userID,
			WeekStartDay: model.DefaultWeekStartDay,
			DayStartHour: model.DefaultDayStartHour,
		}
	} else if err != nil {
		return nil, apperrors.Internal("failed to get settings")
	}

	if input.WeekStartDay != nil {
		settings.WeekStartDay = *input.WeekStartDay
	}
	if input.DayStartHour != nil {
		settings.DayStartHour = *input.DayStartHour
	}
	settings.UpdatedAt = time.Now().UTC()

	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, apperrors.Internal("failed to save settings")
	}

	return &SettingsView{
		WeekStartDay: settings.WeekStartDay,
		DayStartHour: settings.DayStartHour,
	}, nil
}

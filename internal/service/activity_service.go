package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/ms0ur/timeflow/internal/errors"
	"github.com/ms0ur/timeflow/internal/model"
	"github.com/ms0ur/timeflow/internal/repository"
)

type ActivityService struct {
	repo *repository.ActivityRepository
}

func NewActivityService(repo *repository.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

type CreateActivityInput struct {
	Name     string
	ParentID *string
	Icon     string
	Color    string
}

type UpdateActivityInput struct {
	Name          *string
	ParentID      *string
	ClearedParent bool
	Icon          *string
	Color         *string
	IsDefault     *bool
}

func (s *ActivityService) List(ctx context.Context, userID string) ([]model.Activity, *apperrors.APIError) {
	activities, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list activities")
	}
	return activities, nil
}

func (s *ActivityService) Create(ctx context.Context, userID string, input CreateActivityInput) (*model.Activity, *apperrors.APIError) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.BadRequest("invalid_name", "activity name is required")
	}

	if input.ParentID != nil {
		if _, err := s.repo.GetOwned(ctx, *input.ParentID, userID); err != nil {
			if err == repository.ErrNotFound {
				return nil, apperrors.NotFound("parent_not_found", "parent activity not found")
			}
			return nil, apperrors.Internal("failed to look up parent activity")
		}
	}

	icon := input.Icon
	if icon == "" {
		icon = model.DefaultActivityIcon
	}
	color := input.Color
	if color == "" {
		color = model.DefaultActivityColor
	}

	activity := model.Activity{
		ID:        uuid.NewString(),
		UserID:    userID,
		ParentID:  input.ParentID,
		Name:      name,
		Icon:      icon,
		Color:     color,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, &activity); err != nil {
		return nil, apperrors.Internal("failed to create activity")
	}
	return &activity, nil
}

func (s *ActivityService) Update(ctx context.Context, userID, activityID string, input UpdateActivityInput) (*model.Activity, *apperrors.APIError) {
	activity, err := s.repo.GetOwned(ctx, activityID, userID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("activity_not_found", "activity not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to look up activity")
	}

	if input.ClearedParent {
		activity.ParentID = nil
	} else if input.ParentID != nil {
		if apiErr := s.validateParent(ctx, userID, activityID, *input.ParentID); apiErr != nil {
			return nil, apiErr
		}
		activity.ParentID = input.ParentID
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.BadRequest("invalid_name", "activity name is required")
		}
		activity.Name = name
	}
	if input.Icon != nil {
		activity.Icon = *input.Icon
	}
	if input.Color != nil {
		activity.Color = *input.Color
	}
	if input.IsDefault != nil {
		if *input.IsDefault && !activity.IsDefault {
			if err := s.repo.ClearDefault(ctx, userID); err != nil {
				return nil, apperrors.Internal("failed to clear previous default")
			}
		}
		activity.IsDefault = *input.IsDefault
	}

	if err := s.repo.Update(ctx, activity); err != nil {
		return nil, apperrors.Internal("failed to update activity")
	}
	return activity, nil
}

func (s *ActivityService) Delete(ctx context.Context, userID, activityID string) *apperrors.APIError {
	activity, err := s.repo.GetOwned(ctx, activityID, userID)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("activity_not_found", "activity not found")
	}
	if err != nil {
		return apperrors.Internal("failed to look up activity")
	}

	if activity.IsDefault {
		return apperrors.BadRequest("default_activity", "cannot delete the default activity")
	}

	if err := s.repo.Delete(ctx, activityID); err != nil {
		return apperrors.Internal("failed to delete activity")
	}
	return nil
}

func (s *ActivityService) Default(ctx context.Context, userID string) (*model.Activity, *apperrors.APIError) {
	activity, err := s.repo.GetDefault(ctx, userID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("no_default_activity", "no default activity configured")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to look up default activity")
	}
	return activity, nil
}

// validateParent rejects a reparent that would create a cycle: the new
// parent must be owned by the user and must not be the activity itself
// or any of its descendants. The check walks ancestors from the
// candidate parent upward over the in-memory arena.
func (s *ActivityService) validateParent(ctx context.Context, userID, activityID, parentID string) *apperrors.APIError {
	if parentID == activityID {
		return apperrors.BadRequest("cyclic_parent", "activity cannot be its own parent")
	}

	activities, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return apperrors.Internal("failed to list activities")
	}

	arena := make(map[string]*model.Activity, len(activities))
	for i := range activities {
		arena[activities[i].ID] = &activities[i]
	}
	if _, ok := arena[parentID]; !ok {
		return apperrors.NotFound("parent_not_found", "parent activity not found")
	}

	current := arena[parentID]
	for steps := 0; current != nil && steps <= len(activities); steps++ {
		if current.ID == activityID {
			return apperrors.BadRequest("cyclic_parent", "assignment would create a cycle")
		}
		if current.ParentID == nil {
			break
		}
		current = arena[*current.ParentID]
	}

	return nil
}

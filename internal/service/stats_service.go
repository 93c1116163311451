package service

import (
	"context"
	"sort"
	"time"

	apperrors "github.com/ms0ur/timeflow/internal/errors"
	"github.com/ms0ur/timeflow/internal/model"
	"github.com/ms0ur/timeflow/internal/repository"
)

type StatsService struct {
	sessions   *repository.SessionRepository
	activities *repository.ActivityRepository
}

func NewStatsService(sessions *repository.SessionRepository, activities *repository.ActivityRepository) *StatsService {
	return &StatsService{sessions: sessions, activities: activities}
}

type StatsInput struct {
	Start    time.Time
	End      time.Time
	MaxDepth int // 0 means attribute time to the session's own activity
}

type ActivityStat struct {
	Activity   model.ActivityDisplay `json:"activity"`
	DurationMs int64                 `json:"durationMs"`
}

type StatsResult struct {
	Start        time.Time      `json:"start"`
	End          time.Time      `json:"end"`
	TotalMs      int64          `json:"totalMs"`
	ByActivity   []ActivityStat `json:"byActivity"`
	SessionCount int            `json:"sessionCount"`
}

// Stats aggregates tracked time per activity over a range. An open
// session counts up to now. With MaxDepth > 0 each session's time rolls
// up to the ancestor sitting at that depth level from the root (depth 1
// is a root activity), walking parents over the in-memory arena.
func (s *StatsService) Stats(ctx context.Context, userID string, input StatsInput) (*StatsResult, *apperrors.APIError) {
	activities, err := s.activities.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list activities")
	}
	arena := make(map[string]*model.Activity, len(activities))
	for i := range activities {
		arena[activities[i].ID] = &activities[i]
	}

	sessions, err := s.sessions.ListInRange(ctx, userID, input.Start, input.End)
	if err != nil {
		return nil, apperrors.Internal("failed to list sessions")
	}

	now := time.Now().UTC()
	totals := make(map[string]int64)
	var totalMs int64

	for _, session := range sessions {
		end := now
		if session.EndedAt != nil {
			end = *session.EndedAt
		}
		duration := end.Sub(session.StartedAt).Milliseconds()
		if duration <= 0 {
			continue
		}

		target := s.activityAtDepth(arena, session.ActivityID, input.MaxDepth)
		if target == "" {
			continue
		}
		totals[target] += duration
		totalMs += duration
	}

	byActivity := make([]ActivityStat, 0, len(totals))
	for activityID, duration := range totals {
		activity, ok := arena[activityID]
		if !ok {
			continue
		}
		byActivity = append(byActivity, ActivityStat{
			Activity:   activity.Display(),
			DurationMs: duration,
		})
	}
	sort.Slice(byActivity, func(i, j int) bool {
		return byActivity[i].DurationMs > byActivity[j].DurationMs
	})

	return &StatsResult{
		Start:        input.Start,
		End:          input.End,
		TotalMs:      totalMs,
		ByActivity:   byActivity,
		SessionCount: len(sessions),
	}, nil
}

// activityAtDepth resolves the ancestor at the requested depth, or the
// activity itself when depth is 0 or the path is shorter than depth.
func (s *StatsService) activityAtDepth(arena map[string]*model.Activity, activityID string, depth int) string {
	if depth <= 0 {
		if _, ok := arena[activityID]; !ok {
			return ""
		}
		return activityID
	}

	path := make([]string, 0, 8)
	current := arena[activityID]
	for current != nil && len(path) <= len(arena) {
		path = append([]string{current.ID}, path...)
		if current.ParentID == nil {
			break
		}
		current = arena[*current.ParentID]
	}
	if len(path) == 0 {
		return ""
	}
	if len(path) < depth {
		return path[len(path)-1]
	}
	return path[depth-1]
}

package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/ms0ur/timeflow/internal/errors"
	"github.com/ms0ur/timeflow/internal/model"
	"github.com/ms0ur/timeflow/internal/observability"
	"github.com/ms0ur/timeflow/internal/repository"
)

// SessionService owns the per-user session timeline. Every mutation
// goes through one reconciliation rule: close the open session at the
// event timestamp, then (for switches) open the replacement at the same
// instant, inside a single transaction. That is what keeps the
// at-most-one-open-session invariant intact under concurrent requests.
type SessionService struct {
	sessions   *repository.SessionRepository
	activities *repository.ActivityRepository
	syncEvents *repository.SyncEventRepository
}

func NewSessionService(
	sessions *repository.SessionRepository,
	activities *repository.ActivityRepository,
	syncEvents *repository.SyncEventRepository,
) *SessionService {
	return &SessionService{
		sessions:   sessions,
		activities: activities,
		syncEvents: syncEvents,
	}
}

type SwitchInput struct {
	ToActivityID string
	Timestamp    *int64 // client ms epoch; server clock when absent
	LocalID      *string
}

type SwitchResult struct {
	PreviousSession *model.Session      `json:"previousSession"`
	CurrentSession  SessionWithActivity `json:"currentSession"`
}

type SessionWithActivity struct {
	model.Session
	Activity model.ActivityDisplay `json:"activity"`
}

type StopInput struct {
	Timestamp *int64
	LocalID   *string
}

type StopResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Session *model.Session `json:"session,omitempty"`
}

// Switch validates ownership of the target activity, closes the open
// session (if any) at the event time and opens a new one at the same
// time, all in one transaction.
func (s *SessionService) Switch(ctx context.Context, userID string, input SwitchInput) (*SwitchResult, *apperrors.APIError) {
	if input.ToActivityID == "" {
		return nil, apperrors.BadRequest("missing_activity", "toActivityId is required")
	}

	eventTime := resolveEventTime(input.Timestamp)

	tx, err := s.sessions.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	target, err := s.activities.GetOwnedTx(ctx, tx, input.ToActivityID, userID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("activity_not_found", "target activity not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to look up activity")
	}

	previous, opened, apiErr := s.applySwitchTx(ctx, tx, userID, input.ToActivityID, input.LocalID, eventTime)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}

	observability.RecordSessionSwitched()
	return &SwitchResult{
		PreviousSession: previous,
		CurrentSession: SessionWithActivity{
			Session:  *opened,
			Activity: target.Display(),
		},
	}, nil
}

// Stop closes the open session at the event time. Stopping with nothing
// active is a success no-op.
func (s *SessionService) Stop(ctx context.Context, userID string, input StopInput) (*StopResult, *apperrors.APIError) {
	eventTime := resolveEventTime(input.Timestamp)

	tx, err := s.sessions.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	active, err := s.sessions.FindOpenTx(ctx, tx, userID)
	if err == repository.ErrNotFound {
		return &StopResult{Success: true, Message: "No active session to stop"}, nil
	}
	if err != nil {
		return nil, apperrors.Internal("failed to look up active session")
	}

	if err := s.sessions.CloseTx(ctx, tx, active.ID, eventTime); err != nil {
		return nil, apperrors.Internal("failed to close session")
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}

	active.EndedAt = &eventTime
	observability.RecordSessionStopped()
	return &StopResult{Success: true, Message: "Tracking stopped", Session: active}, nil
}

// Current returns the open session joined with activity display fields,
// or nil when the user is not tracking.
func (s *SessionService) Current(ctx context.Context, userID string) (*repository.CurrentView, *apperrors.APIError) {
	view, err := s.sessions.CurrentWithActivity(ctx, userID)
	if err == repository.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get current session")
	}
	return view, nil
}

type SyncResult struct {
	ProcessedLocalIDs []string `json:"processedLocalIds"`
	SkippedCount      int      `json:"skippedCount"`
}

// Sync replays a batch of queued client events. Already-processed
// localIds are skipped, the remainder is applied in client-timestamp
// order, each event in its own transaction. An event whose target fails
// ownership validation is dropped without aborting the batch.
func (s *SessionService) Sync(ctx context.Context, userID string, events []model.QueueEvent) (*SyncResult, *apperrors.APIError) {
	localIDs := make([]string, 0, len(events))
	for _, event := range events {
		localIDs = append(localIDs, event.LocalID)
	}

	existing, err := s.syncEvents.ExistingLocalIDs(ctx, userID, localIDs)
	if err != nil {
		return nil, apperrors.Internal("failed to query processed events")
	}

	pending := make([]model.QueueEvent, 0, len(events))
	for _, event := range events {
		if _, done := existing[event.LocalID]; done {
			continue
		}
		pending = append(pending, event)
	}
	skipped := len(events) - len(pending)

	// Client-supplied timestamps decide the order, not arrival order:
	// batches assembled offline routinely arrive out of sequence.
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Timestamp < pending[j].Timestamp
	})

	processed := make([]string, 0, len(pending))
	for _, event := range pending {
		applied, apiErr := s.applyQueuedEvent(ctx, userID, event)
		if apiErr != nil {
			return nil, apiErr
		}
		if applied {
			processed = append(processed, event.LocalID)
		}
	}

	observability.RecordSyncBatch(len(processed), skipped)
	return &SyncResult{ProcessedLocalIDs: processed, SkippedCount: skipped}, nil
}

// applyQueuedEvent replays one event in its own transaction, recording
// the dedup ledger row in the same transaction. Returns false when the
// event was dropped by validation.
func (s *SessionService) applyQueuedEvent(ctx context.Context, userID string, event model.QueueEvent) (bool, *apperrors.APIError) {
	if event.Type != model.EventSwitch && event.Type != model.EventStop {
		return false, nil
	}

	eventTime := event.EventTime()

	tx, err := s.sessions.BeginTx(ctx)
	if err != nil {
		return false, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	switch event.Type {
	case model.EventSwitch:
		if event.ToActivityID == nil {
			return false, nil
		}
		if _, err := s.activities.GetOwnedTx(ctx, tx, *event.ToActivityID, userID); err != nil {
			if err == repository.ErrNotFound {
				return false, nil
			}
			return false, apperrors.Internal("failed to look up activity")
		}
		localID := event.LocalID
		if _, _, apiErr := s.applySwitchTx(ctx, tx, userID, *event.ToActivityID, &localID, eventTime); apiErr != nil {
			return false, apiErr
		}
	case model.EventStop:
		active, err := s.sessions.FindOpenTx(ctx, tx, userID)
		if err != nil && err != repository.ErrNotFound {
			return false, apperrors.Internal("failed to look up active session")
		}
		if err == nil {
			if err := s.sessions.CloseTx(ctx, tx, active.ID, eventTime); err != nil {
				return false, apperrors.Internal("failed to close session")
			}
		}
	}

	ledger := model.SyncEvent{
		ID:             uuid.NewString(),
		UserID:         userID,
		LocalID:        event.LocalID,
		EventType:      event.Type,
		FromActivityID: event.FromActivityID,
		ToActivityID:   event.ToActivityID,
		EventTimestamp: eventTime,
		ProcessedAt:    time.Now().UTC(),
	}
	if err := s.syncEvents.InsertTx(ctx, tx, &ledger); err != nil {
		return false, apperrors.Internal("failed to record sync event")
	}

	if err := tx.Commit(); err != nil {
		return false, apperrors.Internal("failed to commit transaction")
	}
	return true, nil
}

// applySwitchTx is the shared close-then-open step. Ownership of the
// target must already be validated by the caller within the same tx.
func (s *SessionService) applySwitchTx(
	ctx context.Context,
	tx *sql.Tx,
	userID, toActivityID string,
	localID *string,
	eventTime time.Time,
) (*model.Session, *model.Session, *apperrors.APIError) {
	var previous *model.Session
	active, err := s.sessions.FindOpenTx(ctx, tx, userID)
	if err != nil && err != repository.ErrNotFound {
		return nil, nil, apperrors.Internal("failed to look up active session")
	}
	if err == nil {
		if closeErr := s.sessions.CloseTx(ctx, tx, active.ID, eventTime); closeErr != nil {
			return nil, nil, apperrors.Internal("failed to close session")
		}
		active.EndedAt = &eventTime
		previous = active
	}

	now := time.Now().UTC()
	opened := model.Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		ActivityID: toActivityID,
		StartedAt:  eventTime,
		LocalID:    localID,
		SyncedAt:   &now,
		CreatedAt:  now,
	}
	if err := s.sessions.InsertTx(ctx, tx, &opened); err != nil {
		return nil, nil, apperrors.Internal("failed to open session")
	}

	return previous, &opened, nil
}

func resolveEventTime(timestamp *int64) time.Time {
	if timestamp != nil {
		return time.UnixMilli(*timestamp).UTC()
	}
	return time.Now().UTC()
}

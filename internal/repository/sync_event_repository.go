package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ms0ur/timeflow/internal/model"
)

type SyncEventRepository struct {
	db *sql.DB
}

func NewSyncEventRepository(db *sql.DB) *SyncEventRepository {
	return &SyncEventRepository{db: db}
}

// ExistingLocalIDs returns which of the submitted localIds are already
// present in the dedup ledger for the user.
func (r *SyncEventRepository) ExistingLocalIDs(ctx context.Context, userID string, localIDs []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if len(localIDs) == 0 {
		return existing, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(localIDs)), ",")
	args := make([]interface{}, 0, len(localIDs)+1)
	args = append(args, userID)
	for _, id := range localIDs {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT local_id FROM sync_events WHERE user_id = ? AND local_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query existing sync events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var localID string
		if err := rows.Scan(&localID); err != nil {
			return nil, fmt.Errorf("scan sync event local_id: %w", err)
		}
		existing[localID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sync events: %w", err)
	}
	return existing, nil
}

// InsertTx records a processed event inside the same transaction that
// applied it, so a replayed localId is rejected by the unique index.
func (r *SyncEventRepository) InsertTx(ctx context.Context, tx *sql.Tx, event *model.SyncEvent) error {
	var fromActivityID interface{}
	if event.FromActivityID != nil {
		fromActivityID = *event.FromActivityID
	}
	var toActivityID interface{}
	if event.ToActivityID != nil {
		toActivityID = *event.ToActivityID
	}

	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO sync_events (
			id, user_id, local_id, event_type, from_activity_id, to_activity_id, event_timestamp, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.UserID,
		event.LocalID,
		event.EventType,
		fromActivityID,
		toActivityID,
		formatTime(event.EventTimestamp),
		formatTime(event.ProcessedAt),
	)
	if err != nil {
		return fmt.Errorf("insert sync event: %w", err)
	}
	return nil
}

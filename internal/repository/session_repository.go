package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ms0ur/timeflow/internal/model"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

const sessionColumns = `id, user_id, activity_id, started_at, ended_at, description, local_id, synced_at, created_at`

// FindOpenTx returns the user's single open session (ended_at IS NULL),
// or ErrNotFound when the user is not tracking anything.
func (r *SessionRepository) FindOpenTx(ctx context.Context, tx *sql.Tx, userID string) (*model.Session, error) {
	row := tx.QueryRowContext(
		ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE user_id = ? AND ended_at IS NULL`,
		userID,
	)
	return scanSession(row)
}

// CloseTx stamps ended_at on the session. Closing before opening a
// replacement keeps sessions from ever overlapping.
func (r *SessionRepository) CloseTx(ctx context.Context, tx *sql.Tx, sessionID string, endedAt time.Time) error {
	_, err := tx.ExecContext(
		ctx,
		`UPDATE sessions SET ended_at = ? WHERE id = ?`,
		formatTime(endedAt),
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}

func (r *SessionRepository) InsertTx(ctx context.Context, tx *sql.Tx, session *model.Session) error {
	var description interface{}
	if session.Description != nil {
		description = *session.Description
	}
	var localID interface{}
	if session.LocalID != nil {
		localID = *session.LocalID
	}

	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO sessions (
			id, user_id, activity_id, started_at, ended_at, description, local_id, synced_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.ActivityID,
		formatTime(session.StartedAt),
		formatTimePtr(session.EndedAt),
		description,
		localID,
		formatTimePtr(session.SyncedAt),
		formatTime(session.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// CurrentView is a session joined with its activity's display fields,
// the shape the client caches locally.
type CurrentView struct {
	ID         string                `json:"id"`
	ActivityID string                `json:"activityId"`
	StartedAt  time.Time             `json:"startedAt"`
	Activity   model.ActivityDisplay `json:"activity"`
}

func (r *SessionRepository) CurrentWithActivity(ctx context.Context, userID string) (*CurrentView, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT s.id, s.activity_id, s.started_at, a.id, a.name, a.icon, a.color
		 FROM sessions s
		 JOIN activities a ON a.id = s.activity_id
		 WHERE s.user_id = ? AND s.ended_at IS NULL`,
		userID,
	)

	var view CurrentView
	var startedAt string
	err := row.Scan(
		&view.ID,
		&view.ActivityID,
		&startedAt,
		&view.Activity.ID,
		&view.Activity.Name,
		&view.Activity.Icon,
		&view.Activity.Color,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan current session: %w", err)
	}

	parsedStartedAt, err := parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse current session started_at: %w", err)
	}
	view.StartedAt = parsedStartedAt

	return &view, nil
}

func (r *SessionRepository) ListInRange(ctx context.Context, userID string, start, end time.Time) ([]model.Session, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = ? AND started_at >= ? AND started_at <= ?
		 ORDER BY started_at`,
		userID,
		formatTime(start),
		formatTime(end),
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions in range: %w", err)
	}
	defer rows.Close()

	sessions := make([]model.Session, 0)
	for rows.Next() {
		session, scanErr := scanSession(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// CountOpen exists for the tests that assert the single-active-session
// invariant directly against storage.
func (r *SessionRepository) CountOpen(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM sessions WHERE user_id = ? AND ended_at IS NULL`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count open sessions: %w", err)
	}
	return count, nil
}

func scanSession(s scanner) (*model.Session, error) {
	var session model.Session
	var startedAt, createdAt string
	var endedAt, description, localID, syncedAt sql.NullString
	err := s.Scan(
		&session.ID,
		&session.UserID,
		&session.ActivityID,
		&startedAt,
		&endedAt,
		&description,
		&localID,
		&syncedAt,
		&createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	parsedStartedAt, err := parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse session started_at: %w", err)
	}
	session.StartedAt = parsedStartedAt

	session.EndedAt, err = parseTimePtr(endedAt.String, endedAt.Valid)
	if err != nil {
		return nil, fmt.Errorf("parse session ended_at: %w", err)
	}
	session.SyncedAt, err = parseTimePtr(syncedAt.String, syncedAt.Valid)
	if err != nil {
		return nil, fmt.Errorf("parse session synced_at: %w", err)
	}

	if description.Valid {
		value := description.String
		session.Description = &value
	}
	if localID.Valid {
		value := localID.String
		session.LocalID = &value
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse session created_at: %w", err)
	}
	session.CreatedAt = parsedCreatedAt

	return &session, nil
}

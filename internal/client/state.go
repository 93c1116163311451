package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ms0ur/timeflow/internal/model"
)

// Store persists the client's durable state as one JSON blob per file.
// A missing or unparseable blob is treated as absent, never as an
// error the caller has to handle.
type Store struct {
	dir string
}

const (
	sessionFile    = "session.json"
	queueFile      = "queue.json"
	offlineFile    = "offline.json"
	activitiesFile = "activities.json"
)

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// SessionSnapshot mirrors what the tracker needs to come back up after
// a restart without talking to the server.
type SessionSnapshot struct {
	ID         string                `json:"id"`
	ActivityID string                `json:"activityId"`
	StartedAt  int64                 `json:"startedAt"` // ms since epoch
	Activity   model.ActivityDisplay `json:"activity"`
	IsTracking bool                  `json:"isTracking"`
}

type offlineState struct {
	ForcedOffline bool `json:"forcedOffline"`
}

func (s *Store) ReadSnapshot() (*SessionSnapshot, bool) {
	var snapshot SessionSnapshot
	if !s.readJSON(sessionFile, &snapshot) || snapshot.ActivityID == "" {
		return nil, false
	}
	return &snapshot, true
}

func (s *Store) WriteSnapshot(snapshot SessionSnapshot) error {
	return s.writeJSON(sessionFile, snapshot)
}

func (s *Store) ClearSnapshot() {
	_ = os.Remove(filepath.Join(s.dir, sessionFile))
}

func (s *Store) ReadQueue() []model.QueueEvent {
	var events []model.QueueEvent
	if !s.readJSON(queueFile, &events) {
		return nil
	}
	return events
}

func (s *Store) WriteQueue(events []model.QueueEvent) error {
	return s.writeJSON(queueFile, events)
}

func (s *Store) ReadForcedOffline() bool {
	var state offlineState
	if !s.readJSON(offlineFile, &state) {
		return false
	}
	return state.ForcedOffline
}

func (s *Store) WriteForcedOffline(forced bool) error {
	return s.writeJSON(offlineFile, offlineState{ForcedOffline: forced})
}

func (s *Store) ReadActivities() []model.Activity {
	var activities []model.Activity
	if !s.readJSON(activitiesFile, &activities) {
		return nil
	}
	return activities
}

func (s *Store) WriteActivities(activities []model.Activity) error {
	return s.writeJSON(activitiesFile, activities)
}

func (s *Store) readJSON(name string, v interface{}) bool {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		// Corrupt blob: treated as absent.
		return false
	}
	return true
}

func (s *Store) writeJSON(name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

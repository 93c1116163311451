package model

import "time"

// Session is one contiguous tracked segment. EndedAt nil means this is
// the user's currently active session; at most one such row may exist
// per user at any time.
type Session struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	ActivityID  string     `json:"activityId"`
	StartedAt   time.Time  `json:"startedAt"`
	EndedAt     *time.Time `json:"endedAt,omitempty"`
	Description *string    `json:"description,omitempty"`
	LocalID     *string    `json:"localId,omitempty"`
	SyncedAt    *time.Time `json:"syncedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (s Session) IsOpen() bool {
	return s.EndedAt == nil
}

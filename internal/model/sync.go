package model

import "time"

const (
	EventSwitch = "SWITCH"
	EventStop   = "STOP"
)

// QueueEvent is a state-transition intent taken while the client could
// not reach the server. Timestamp is the client clock in ms since epoch;
// it decides the chronological slot of the event during replay.
type QueueEvent struct {
	LocalID        string  `json:"localId"`
	Type           string  `json:"type"`
	FromActivityID *string `json:"fromActivityId"`
	ToActivityID   *string `json:"toActivityId"`
	Timestamp      int64   `json:"timestamp"`
}

// EventTime converts the client ms-epoch timestamp to UTC.
func (e QueueEvent) EventTime() time.Time {
	return time.UnixMilli(e.Timestamp).UTC()
}

// SyncEvent is a row in the server-side dedup ledger: one per processed
// client event, unique on (userId, localId).
type SyncEvent struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	LocalID        string    `json:"localId"`
	EventType      string    `json:"eventType"`
	FromActivityID *string   `json:"fromActivityId"`
	ToActivityID   *string   `json:"toActivityId"`
	EventTimestamp time.Time `json:"eventTimestamp"`
	ProcessedAt    time.Time `json:"processedAt"`
}

package client

import (
	"sync"

	"github.com/ms0ur/timeflow/internal/model"
)

// Queue is the durable, ordered log of state-transition intents taken
// while the server was unreachable. Events are only ever appended or
// removed, never mutated; every mutation is persisted immediately.
type Queue struct {
	mu     sync.Mutex
	store  *Store
	events []model.QueueEvent
}

// NewQueue loads whatever survived the last run.
func NewQueue(store *Store) *Queue {
	return &Queue{
		store:  store,
		events: store.ReadQueue(),
	}
}

func (q *Queue) Append(event model.QueueEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, event)
	return q.store.WriteQueue(q.events)
}

// Remove drops every event whose localId was acknowledged.
func (q *Queue) Remove(localIDs []string) error {
	if len(localIDs) == 0 {
		return nil
	}
	acked := make(map[string]struct{}, len(localIDs))
	for _, id := range localIDs {
		acked[id] = struct{}{}
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.events[:0]
	for _, event := range q.events {
		if _, ok := acked[event.LocalID]; !ok {
			kept = append(kept, event)
		}
	}
	q.events = kept
	return q.store.WriteQueue(q.events)
}

// Events returns a copy; callers must not see later mutations.
func (q *Queue) Events() []model.QueueEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := make([]model.QueueEvent, len(q.events))
	copy(events, q.events)
	return events
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

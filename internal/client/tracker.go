package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ms0ur/timeflow/internal/model"
)

// LocalSession is the client's view of what is being tracked right
// now. ID is empty while the session is only an optimistic guess the
// server has not confirmed yet.
type LocalSession struct {
	ID         string
	ActivityID string
	StartedAt  time.Time
	Activity   model.ActivityDisplay
}

// Tracker is the local session store: the optimistic "what am I doing
// right now" state, a live elapsed clock, and durable snapshots across
// restarts. It is an explicit context object with an Init/Close
// lifecycle; nothing here lives in package-level state.
type Tracker struct {
	mu       sync.Mutex
	api      *API
	store    *Store
	queue    *Queue
	syncer   *Syncer
	session  *LocalSession
	elapsed  time.Duration
	tracking bool
	tickStop chan struct{}
}

func NewTracker(api *API, store *Store, queue *Queue, syncer *Syncer) *Tracker {
	return &Tracker{
		api:    api,
		store:  store,
		queue:  queue,
		syncer: syncer,
	}
}

// Init restores the last snapshot before any network call, so state is
// available instantly; the server is consulted only when effectively
// online and nothing usable was stored. A failed fetch never erases a
// good snapshot.
func (t *Tracker) Init(ctx context.Context) {
	restored := t.restoreSnapshot()
	if restored || !t.syncer.EffectiveOnline() {
		return
	}
	t.FetchCurrent(ctx)
}

// Close stops the clock. Safe to call more than once.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopTickingLocked()
}

func (t *Tracker) Current() (*LocalSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return nil, false
	}
	session := *t.session
	return &session, t.tracking
}

func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tracking && t.session != nil {
		return time.Since(t.session.StartedAt)
	}
	return t.elapsed
}

// SwitchActivity optimistically replaces the current session and
// persists the snapshot before any network round-trip. Online, the
// server's id/startedAt are adopted on success; on failure the
// previous session is restored and the intent queued. Offline, the
// intent is queued without reverting.
func (t *Tracker) SwitchActivity(ctx context.Context, activity model.ActivityDisplay) error {
	timestamp := time.Now().UnixMilli()
	localID := newLocalID("switch", timestamp)

	t.mu.Lock()
	previous := t.session
	t.session = &LocalSession{
		ActivityID: activity.ID,
		StartedAt:  time.UnixMilli(timestamp).UTC(),
		Activity:   activity,
	}
	t.elapsed = 0
	t.tracking = true
	t.startTickingLocked()
	t.saveSnapshotLocked()
	t.mu.Unlock()

	event := model.QueueEvent{
		LocalID:        localID,
		Type:           model.EventSwitch,
		FromActivityID: activityIDPtr(previous),
		ToActivityID:   &activity.ID,
		Timestamp:      timestamp,
	}

	if !t.syncer.EffectiveOnline() {
		return t.queue.Append(event)
	}

	resp, err := t.api.Switch(ctx, activity.ID, timestamp, localID)
	if err != nil {
		t.revertTo(previous)
		return t.queue.Append(event)
	}

	t.mu.Lock()
	if t.session != nil && t.session.ActivityID == activity.ID {
		t.session.ID = resp.CurrentSession.ID
		t.session.StartedAt = resp.CurrentSession.StartedAt
		t.saveSnapshotLocked()
	}
	t.mu.Unlock()
	return nil
}

// StopTracking clears the session optimistically and commits to that
// state: an online failure queues the STOP intent instead of
// reverting, same as the offline path.
func (t *Tracker) StopTracking(ctx context.Context) error {
	t.mu.Lock()
	if t.session == nil {
		t.mu.Unlock()
		return nil
	}
	previous := t.session
	t.tracking = false
	t.stopTickingLocked()
	t.session = nil
	t.elapsed = 0
	t.store.ClearSnapshot()
	t.mu.Unlock()

	timestamp := time.Now().UnixMilli()
	event := model.QueueEvent{
		LocalID:        newLocalID("stop", timestamp),
		Type:           model.EventStop,
		FromActivityID: &previous.ActivityID,
		Timestamp:      timestamp,
	}

	if !t.syncer.EffectiveOnline() {
		return t.queue.Append(event)
	}
	if _, err := t.api.Stop(ctx, timestamp, event.LocalID); err != nil {
		return t.queue.Append(event)
	}
	return nil
}

// ResumeTracking switches to the user's default activity, preferring
// the cached activity list so resuming works offline.
func (t *Tracker) ResumeTracking(ctx context.Context) error {
	activities := t.store.ReadActivities()
	if len(activities) == 0 && t.syncer.EffectiveOnline() {
		fetched, err := t.api.Activities(ctx)
		if err != nil {
			return fmt.Errorf("fetch activities: %w", err)
		}
		activities = fetched
		_ = t.store.WriteActivities(fetched)
	}

	for _, activity := range activities {
		if activity.IsDefault {
			return t.SwitchActivity(ctx, activity.Display())
		}
	}
	return fmt.Errorf("no default activity configured")
}

// FetchCurrent pulls the authoritative open session. No session on the
// server clears local state; an error keeps it.
func (t *Tracker) FetchCurrent(ctx context.Context) {
	current, err := t.api.Current(ctx)
	if err != nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if current == nil {
		t.session = nil
		t.elapsed = 0
		t.tracking = false
		t.stopTickingLocked()
		t.store.ClearSnapshot()
		return
	}

	t.session = &LocalSession{
		ID:         current.ID,
		ActivityID: current.ActivityID,
		StartedAt:  current.StartedAt,
		Activity:   current.Activity,
	}
	t.tracking = true
	t.startTickingLocked()
	t.saveSnapshotLocked()
}

func (t *Tracker) restoreSnapshot() bool {
	snapshot, ok := t.store.ReadSnapshot()
	if !ok {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.session = &LocalSession{
		ID:         snapshot.ID,
		ActivityID: snapshot.ActivityID,
		StartedAt:  time.UnixMilli(snapshot.StartedAt).UTC(),
		Activity:   snapshot.Activity,
	}
	t.tracking = snapshot.IsTracking
	if t.tracking {
		t.startTickingLocked()
	}
	return true
}

func (t *Tracker) revertTo(previous *LocalSession) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.session = previous
	if previous == nil {
		t.tracking = false
		t.elapsed = 0
		t.stopTickingLocked()
		t.store.ClearSnapshot()
		return
	}
	t.tracking = true
	t.elapsed = time.Since(previous.StartedAt)
	t.startTickingLocked()
	t.saveSnapshotLocked()
}

// startTickingLocked spins up the elapsed clock. At most one ticker
// goroutine exists; the handle is the single guard.
func (t *Tracker) startTickingLocked() {
	if t.tickStop != nil {
		return
	}
	stop := make(chan struct{})
	t.tickStop = stop

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				t.mu.Lock()
				if t.tracking && t.session != nil {
					t.elapsed = time.Since(t.session.StartedAt)
				}
				t.mu.Unlock()
			}
		}
	}()
}

func (t *Tracker) stopTickingLocked() {
	if t.tickStop == nil {
		return
	}
	close(t.tickStop)
	t.tickStop = nil
}

func (t *Tracker) saveSnapshotLocked() {
	if t.session == nil {
		return
	}
	_ = t.store.WriteSnapshot(SessionSnapshot{
		ID:         t.session.ID,
		ActivityID: t.session.ActivityID,
		StartedAt:  t.session.StartedAt.UnixMilli(),
		Activity:   t.session.Activity,
		IsTracking: t.tracking,
	})
}

func activityIDPtr(session *LocalSession) *string {
	if session == nil {
		return nil
	}
	id := session.ActivityID
	return &id
}

func newLocalID(kind string, timestamp int64) string {
	return fmt.Sprintf("%s_%d_%s", kind, timestamp, uuid.NewString()[:8])
}

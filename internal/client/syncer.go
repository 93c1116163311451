package client

import (
	"context"
	"sync"
)

// Syncer decides when queued events may be shipped to the server. Two
// independent signals feed it: raw network reachability and the user's
// forced-offline preference. With forced-offline set, a flush never
// happens behind the user's back; regaining network alone is not a
// trigger. Only TryGoOnline clears the preference and flushes.
type Syncer struct {
	mu            sync.Mutex
	api           *API
	queue         *Queue
	store         *Store
	netOnline     bool
	forcedOffline bool
	syncing       bool
}

func NewSyncer(api *API, queue *Queue, store *Store) *Syncer {
	return &Syncer{
		api:           api,
		queue:         queue,
		store:         store,
		forcedOffline: store.ReadForcedOffline(),
	}
}

// Probe refreshes the raw reachability signal. It never triggers a
// flush by itself.
func (s *Syncer) Probe(ctx context.Context) bool {
	online := s.api.Ping(ctx)
	s.mu.Lock()
	s.netOnline = online
	s.mu.Unlock()
	return online
}

func (s *Syncer) SetNetOnline(online bool) {
	s.mu.Lock()
	s.netOnline = online
	s.mu.Unlock()
}

// SetForcedOffline persists the user preference.
func (s *Syncer) SetForcedOffline(forced bool) error {
	s.mu.Lock()
	s.forcedOffline = forced
	s.mu.Unlock()
	return s.store.WriteForcedOffline(forced)
}

func (s *Syncer) ForcedOffline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forcedOffline
}

// EffectiveOnline is true only when the network is reachable and the
// user has not forced offline mode.
func (s *Syncer) EffectiveOnline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.netOnline && !s.forcedOffline
}

// SyncToServer ships the whole queue in one batch. No-op when the
// queue is empty, a sync is already in flight, or we are not
// effectively online. On failure the queue is left untouched for the
// next attempt.
func (s *Syncer) SyncToServer(ctx context.Context) error {
	s.mu.Lock()
	if s.syncing || !s.netOnline || s.forcedOffline {
		s.mu.Unlock()
		return nil
	}
	events := s.queue.Events()
	if len(events) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.syncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.syncing = false
		s.mu.Unlock()
	}()

	resp, err := s.api.Sync(ctx, events)
	if err != nil {
		return err
	}
	return s.queue.Remove(resp.ProcessedLocalIDs)
}

// TryGoOnline is the user-initiated path back: clear forced-offline,
// probe the network, and flush whatever queued up.
func (s *Syncer) TryGoOnline(ctx context.Context) error {
	if err := s.SetForcedOffline(false); err != nil {
		return err
	}
	if !s.Probe(ctx) {
		return nil
	}
	return s.SyncToServer(ctx)
}

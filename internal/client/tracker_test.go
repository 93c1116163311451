package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ms0ur/timeflow/internal/client"
	"github.com/ms0ur/timeflow/internal/model"
)

// trackerServer fakes the session endpoints the tracker talks to.
type trackerServer struct {
	failSwitch bool
	failStop   bool
}

func (s *trackerServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/sessions/switch", func(w http.ResponseWriter, r *http.Request) {
		if s.failSwitch {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"code":"internal_error","message":"boom"}}`))
			return
		}
		var req struct {
			ToActivityID string `json:"toActivityId"`
			Timestamp    int64  `json:"timestamp"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"previousSession": nil,
			"currentSession": map[string]interface{}{
				"id":         "srv-" + req.ToActivityID,
				"activityId": req.ToActivityID,
				"startedAt":  time.UnixMilli(req.Timestamp).UTC().Format(time.RFC3339Nano),
				"activity":   map[string]string{"id": req.ToActivityID, "name": "Activity", "icon": "circle", "color": "#fff"},
			},
		})
	})
	mux.HandleFunc("/api/sessions/stop", func(w http.ResponseWriter, r *http.Request) {
		if s.failStop {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"code":"internal_error","message":"boom"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": "Tracking stopped",
		})
	})
	mux.HandleFunc("/api/sessions/current", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"session": nil})
	})
	return mux
}

type trackerEnv struct {
	store   *client.Store
	dir     string
	queue   *client.Queue
	api     *client.API
	syncer  *client.Syncer
	tracker *client.Tracker
}

func newTrackerEnv(t *testing.T, serverURL string) *trackerEnv {
	t.Helper()
	store, dir := newTestStore(t)
	queue := client.NewQueue(store)
	api := client.NewAPI(serverURL, "token")
	syncer := client.NewSyncer(api, queue, store)
	tracker := client.NewTracker(api, store, queue, syncer)
	t.Cleanup(tracker.Close)
	return &trackerEnv{store: store, dir: dir, queue: queue, api: api, syncer: syncer, tracker: tracker}
}

func display(id, name string) model.ActivityDisplay {
	return model.ActivityDisplay{ID: id, Name: name, Icon: "circle", Color: "#fff"}
}

func TestOfflineSwitchQueuesIntent(t *testing.T) {
	env := newTrackerEnv(t, "http://127.0.0.1:0")
	// netOnline stays false: every call is an offline call.

	if err := env.tracker.SwitchActivity(context.Background(), display("act-1", "Work")); err != nil {
		t.Fatalf("switch: %v", err)
	}

	session, tracking := env.tracker.Current()
	if session == nil || !tracking {
		t.Fatal("expected an optimistic tracking session")
	}
	if session.ActivityID != "act-1" {
		t.Fatalf("expected act-1, got %s", session.ActivityID)
	}
	if session.ID != "" {
		t.Fatalf("offline session must not carry a server id, got %s", session.ID)
	}

	events := env.queue.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 queued event, got %d", len(events))
	}
	if events[0].Type != model.EventSwitch || *events[0].ToActivityID != "act-1" {
		t.Fatalf("unexpected queued event: %+v", events[0])
	}
	if events[0].FromActivityID != nil {
		t.Fatalf("first switch has no source activity, got %v", *events[0].FromActivityID)
	}

	// A second switch records the transition edge.
	if err := env.tracker.SwitchActivity(context.Background(), display("act-2", "Reading")); err != nil {
		t.Fatalf("second switch: %v", err)
	}
	events = env.queue.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 queued events, got %d", len(events))
	}
	if *events[1].FromActivityID != "act-1" || *events[1].ToActivityID != "act-2" {
		t.Fatalf("unexpected transition edge: %+v", events[1])
	}
}

func TestSnapshotRestoresAcrossRestart(t *testing.T) {
	env := newTrackerEnv(t, "http://127.0.0.1:0")

	if err := env.tracker.SwitchActivity(context.Background(), display("act-1", "Work")); err != nil {
		t.Fatalf("switch: %v", err)
	}
	env.tracker.Close()

	// Simulate a restart: fresh objects over the same state directory.
	store, err := client.NewStore(env.dir)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	queue := client.NewQueue(store)
	api := client.NewAPI("http://127.0.0.1:0", "token")
	syncer := client.NewSyncer(api, queue, store)
	tracker := client.NewTracker(api, store, queue, syncer)
	defer tracker.Close()

	tracker.Init(context.Background())

	session, tracking := tracker.Current()
	if session == nil || !tracking {
		t.Fatal("expected restored tracking session")
	}
	if session.ActivityID != "act-1" || session.Activity.Name != "Work" {
		t.Fatalf("unexpected restored session: %+v", session)
	}
	if queue.Len() != 1 {
		t.Fatalf("expected queued intent to survive restart, got %d", queue.Len())
	}
}

func TestCorruptSnapshotTreatedAsAbsent(t *testing.T) {
	env := newTrackerEnv(t, "http://127.0.0.1:0")
	if err := os.WriteFile(filepath.Join(env.dir, "session.json"), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write corrupt snapshot: %v", err)
	}

	env.tracker.Init(context.Background())

	if session, _ := env.tracker.Current(); session != nil {
		t.Fatalf("expected no session from corrupt snapshot, got %+v", session)
	}
}

func TestOnlineSwitchAdoptsServerSession(t *testing.T) {
	fake := &trackerServer{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	env := newTrackerEnv(t, server.URL)
	env.syncer.SetNetOnline(true)

	if err := env.tracker.SwitchActivity(context.Background(), display("act-1", "Work")); err != nil {
		t.Fatalf("switch: %v", err)
	}

	session, tracking := env.tracker.Current()
	if session == nil || !tracking {
		t.Fatal("expected a tracking session")
	}
	if session.ID != "srv-act-1" {
		t.Fatalf("expected the server-issued id, got %q", session.ID)
	}
	if env.queue.Len() != 0 {
		t.Fatalf("confirmed switch must not queue, got %d events", env.queue.Len())
	}
}

func TestOnlineSwitchFailureRevertsAndQueues(t *testing.T) {
	fake := &trackerServer{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	env := newTrackerEnv(t, server.URL)
	env.syncer.SetNetOnline(true)

	if err := env.tracker.SwitchActivity(context.Background(), display("act-1", "Work")); err != nil {
		t.Fatalf("first switch: %v", err)
	}

	fake.failSwitch = true
	if err := env.tracker.SwitchActivity(context.Background(), display("act-2", "Reading")); err != nil {
		t.Fatalf("failed switch still queues: %v", err)
	}

	// The optimistic state is rolled back to the confirmed session.
	session, tracking := env.tracker.Current()
	if session == nil || !tracking {
		t.Fatal("expected the previous session after rollback")
	}
	if session.ActivityID != "act-1" {
		t.Fatalf("expected rollback to act-1, got %s", session.ActivityID)
	}

	// The intent survives in the queue for the next sync.
	events := env.queue.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 queued event, got %d", len(events))
	}
	if *events[0].ToActivityID != "act-2" {
		t.Fatalf("expected queued switch to act-2, got %+v", events[0])
	}

	// The rollback is durable.
	snapshot, ok := env.store.ReadSnapshot()
	if !ok || snapshot.ActivityID != "act-1" {
		t.Fatalf("expected persisted rollback, got %+v", snapshot)
	}
}

func TestStopCommitsEvenWhenServerFails(t *testing.T) {
	fake := &trackerServer{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	env := newTrackerEnv(t, server.URL)
	env.syncer.SetNetOnline(true)

	if err := env.tracker.SwitchActivity(context.Background(), display("act-1", "Work")); err != nil {
		t.Fatalf("switch: %v", err)
	}

	fake.failStop = true
	if err := env.tracker.StopTracking(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	// Stop never reverts: state is cleared and the intent queued.
	if session, _ := env.tracker.Current(); session != nil {
		t.Fatalf("expected no session after stop, got %+v", session)
	}
	events := env.queue.Events()
	if len(events) != 1 || events[0].Type != model.EventStop {
		t.Fatalf("expected a queued STOP intent, got %+v", events)
	}
	if _, ok := env.store.ReadSnapshot(); ok {
		t.Fatal("expected snapshot cleared after stop")
	}
}

func TestStopOfflineQueuesIntent(t *testing.T) {
	env := newTrackerEnv(t, "http://127.0.0.1:0")

	if err := env.tracker.SwitchActivity(context.Background(), display("act-1", "Work")); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if err := env.tracker.StopTracking(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if session, _ := env.tracker.Current(); session != nil {
		t.Fatalf("expected no session after stop, got %+v", session)
	}
	events := env.queue.Events()
	if len(events) != 2 {
		t.Fatalf("expected switch and stop queued, got %d", len(events))
	}
	if events[1].Type != model.EventStop || *events[1].FromActivityID != "act-1" {
		t.Fatalf("unexpected stop event: %+v", events[1])
	}
}

func TestStopWithoutSessionIsNoop(t *testing.T) {
	env := newTrackerEnv(t, "http://127.0.0.1:0")
	if err := env.tracker.StopTracking(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if env.queue.Len() != 0 {
		t.Fatalf("expected nothing queued, got %d", env.queue.Len())
	}
}

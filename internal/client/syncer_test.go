package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ms0ur/timeflow/internal/client"
)

// syncServer fakes the server's health and sync endpoints. ackAll
// acknowledges every submitted localId; failSync answers 500 instead.
type syncServer struct {
	syncCalls atomic.Int64
	failSync  bool
}

func (s *syncServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/sessions/sync", func(w http.ResponseWriter, r *http.Request) {
		s.syncCalls.Add(1)
		if s.failSync {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"code":"internal_error","message":"boom"}}`))
			return
		}
		var req struct {
			Events []struct {
				LocalID string `json:"localId"`
			} `json:"events"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		acked := make([]string, 0, len(req.Events))
		for _, event := range req.Events {
			acked = append(acked, event.LocalID)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"processedLocalIds": acked,
			"skippedCount":      0,
		})
	})
	return mux
}

func TestForcedOfflineBlocksSync(t *testing.T) {
	fake := &syncServer{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	store, _ := newTestStore(t)
	queue := client.NewQueue(store)
	api := client.NewAPI(server.URL, "token")
	syncer := client.NewSyncer(api, queue, store)

	if err := queue.Append(queueEvent("pending", "act", 1)); err != nil {
		t.Fatalf("append: %v", err)
	}

	syncer.SetNetOnline(true)
	if err := syncer.SetForcedOffline(true); err != nil {
		t.Fatalf("set forced offline: %v", err)
	}

	if syncer.EffectiveOnline() {
		t.Fatal("forced offline must override network reachability")
	}
	if err := syncer.SyncToServer(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if fake.syncCalls.Load() != 0 {
		t.Fatalf("expected no sync request while forced offline, got %d", fake.syncCalls.Load())
	}
	if queue.Len() != 1 {
		t.Fatalf("expected queue untouched, got %d", queue.Len())
	}
}

func TestForcedOfflineSurvivesRestart(t *testing.T) {
	store, dir := newTestStore(t)
	queue := client.NewQueue(store)
	api := client.NewAPI("http://127.0.0.1:0", "token")
	syncer := client.NewSyncer(api, queue, store)

	if err := syncer.SetForcedOffline(true); err != nil {
		t.Fatalf("set forced offline: %v", err)
	}

	reopened, err := client.NewStore(dir)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	fresh := client.NewSyncer(api, client.NewQueue(reopened), reopened)
	if !fresh.ForcedOffline() {
		t.Fatal("forced offline preference must survive a restart")
	}
}

func TestTryGoOnlineFlushesQueue(t *testing.T) {
	fake := &syncServer{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	store, _ := newTestStore(t)
	queue := client.NewQueue(store)
	api := client.NewAPI(server.URL, "token")
	syncer := client.NewSyncer(api, queue, store)

	if err := syncer.SetForcedOffline(true); err != nil {
		t.Fatalf("set forced offline: %v", err)
	}
	if err := queue.Append(queueEvent("q1", "act", 1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := queue.Append(queueEvent("q2", "act", 2)); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := syncer.TryGoOnline(context.Background()); err != nil {
		t.Fatalf("try go online: %v", err)
	}

	if syncer.ForcedOffline() {
		t.Fatal("expected forced offline cleared")
	}
	if fake.syncCalls.Load() != 1 {
		t.Fatalf("expected exactly one sync request, got %d", fake.syncCalls.Load())
	}
	if queue.Len() != 0 {
		t.Fatalf("expected queue drained, got %d", queue.Len())
	}
	if store.ReadForcedOffline() {
		t.Fatal("expected cleared preference persisted")
	}
}

func TestSyncFailureLeavesQueueIntact(t *testing.T) {
	fake := &syncServer{failSync: true}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	store, _ := newTestStore(t)
	queue := client.NewQueue(store)
	api := client.NewAPI(server.URL, "token")
	syncer := client.NewSyncer(api, queue, store)

	if err := queue.Append(queueEvent("keep", "act", 1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	syncer.SetNetOnline(true)

	if err := syncer.SyncToServer(context.Background()); err == nil {
		t.Fatal("expected sync error")
	}
	if queue.Len() != 1 {
		t.Fatalf("expected event retained for the next attempt, got %d", queue.Len())
	}

	// A later successful attempt drains it.
	fake.failSync = false
	if err := syncer.SyncToServer(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if queue.Len() != 0 {
		t.Fatalf("expected queue drained on retry, got %d", queue.Len())
	}
}

func TestSyncWithEmptyQueueSkipsRequest(t *testing.T) {
	fake := &syncServer{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	store, _ := newTestStore(t)
	queue := client.NewQueue(store)
	api := client.NewAPI(server.URL, "token")
	syncer := client.NewSyncer(api, queue, store)
	syncer.SetNetOnline(true)

	if err := syncer.SyncToServer(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if fake.syncCalls.Load() != 0 {
		t.Fatalf("expected no request for an empty queue, got %d", fake.syncCalls.Load())
	}
}

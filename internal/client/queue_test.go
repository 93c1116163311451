package client_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ms0ur/timeflow/internal/client"
	"github.com/ms0ur/timeflow/internal/model"
)

func newTestStore(t *testing.T) (*client.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := client.NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, dir
}

func queueEvent(localID string, activityID string, timestamp int64) model.QueueEvent {
	return model.QueueEvent{
		LocalID:      localID,
		Type:         model.EventSwitch,
		ToActivityID: &activityID,
		Timestamp:    timestamp,
	}
}

func TestQueuePersistsAcrossReloads(t *testing.T) {
	store, dir := newTestStore(t)
	queue := client.NewQueue(store)

	if err := queue.Append(queueEvent("q1", "act-1", 100)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := queue.Append(queueEvent("q2", "act-2", 200)); err != nil {
		t.Fatalf("append: %v", err)
	}

	// Fresh store and queue over the same directory sees the same log.
	reopened, err := client.NewStore(dir)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	reloaded := client.NewQueue(reopened)
	events := reloaded.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events after reload, got %d", len(events))
	}
	if events[0].LocalID != "q1" || events[1].LocalID != "q2" {
		t.Fatalf("order not preserved: %s, %s", events[0].LocalID, events[1].LocalID)
	}
}

func TestQueueRemoveDropsOnlyAcked(t *testing.T) {
	store, dir := newTestStore(t)
	queue := client.NewQueue(store)

	for i, id := range []string{"a", "b", "c"} {
		if err := queue.Append(queueEvent(id, "act", int64(i*100))); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	if err := queue.Remove([]string{"a", "c"}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	events := queue.Events()
	if len(events) != 1 || events[0].LocalID != "b" {
		t.Fatalf("expected only b left, got %+v", events)
	}

	// The removal is durable.
	reopened, err := client.NewStore(dir)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	if got := client.NewQueue(reopened).Len(); got != 1 {
		t.Fatalf("expected 1 event after reload, got %d", got)
	}
}

func TestQueueRemoveEmptyAckIsNoop(t *testing.T) {
	store, _ := newTestStore(t)
	queue := client.NewQueue(store)
	if err := queue.Append(queueEvent("only", "act", 1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := queue.Remove(nil); err != nil {
		t.Fatalf("remove nil: %v", err)
	}
	if queue.Len() != 1 {
		t.Fatalf("expected event to survive empty ack, got %d", queue.Len())
	}
}

func TestCorruptQueueFileTreatedAsEmpty(t *testing.T) {
	store, dir := newTestStore(t)
	if err := os.WriteFile(filepath.Join(dir, "queue.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	queue := client.NewQueue(store)
	if queue.Len() != 0 {
		t.Fatalf("expected empty queue from corrupt file, got %d", queue.Len())
	}

	// The queue still works afterwards.
	if err := queue.Append(queueEvent("fresh", "act", 1)); err != nil {
		t.Fatalf("append after corruption: %v", err)
	}
	if queue.Len() != 1 {
		t.Fatalf("expected 1 event, got %d", queue.Len())
	}
}

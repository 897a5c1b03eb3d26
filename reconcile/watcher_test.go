// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reconcile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/chain-ballot/contract"
	"github.com/danielhkuo/chain-ballot/contract/contracttest"
	"github.com/danielhkuo/chain-ballot/models"
)

// upsertRecorder captures every upsert body the watcher pushes
type upsertRecorder struct {
	mu      sync.Mutex
	updates []models.UpsertMetaRequest
}

func (rec *upsertRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/elections/meta", func(w http.ResponseWriter, r *http.Request) {
		var update models.UpsertMetaRequest
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			t.Errorf("failed to decode upsert body: %v", err)
		}
		rec.mu.Lock()
		rec.updates = append(rec.updates, update)
		rec.mu.Unlock()
		json.NewEncoder(w).Encode(models.UpsertMetaResponse{Success: true})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func (rec *upsertRecorder) wait(t *testing.T, n int) []models.UpsertMetaRequest {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec.mu.Lock()
		if len(rec.updates) >= n {
			updates := append([]models.UpsertMetaRequest{}, rec.updates...)
			rec.mu.Unlock()
			return updates
		}
		rec.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d upserts", n)
	return nil
}

func runWatcher(t *testing.T, w *Watcher) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	t.Cleanup(cancel)
	return cancel
}

func TestWatcher_ElectionStartedPushesNameAndStartTime(t *testing.T) {
	rec := &upsertRecorder{}
	server := rec.server(t)

	fake := contracttest.New()
	watcher := NewWatcher(fake, NewMetaClient(server.URL), func() string { return "Council Vote" })
	runWatcher(t, watcher)

	fake.Emit(contract.Event{Kind: contract.EventElectionStarted, Timestamp: 1735000000})

	updates := rec.wait(t, 1)
	update := updates[0]

	if update.ElectionName == nil || *update.ElectionName != "Council Vote" {
		t.Errorf("expected election name in start push, got %+v", update)
	}
	if update.StartTime == nil || *update.StartTime != "2024-12-24T00:26:40Z" {
		t.Errorf("expected start_time 2024-12-24T00:26:40Z, got %+v", update.StartTime)
	}
	if update.EndTime != nil {
		t.Errorf("start push must not touch end_time, got %v", *update.EndTime)
	}
}

func TestWatcher_ElectionEndedPushesEndTimeOnly(t *testing.T) {
	rec := &upsertRecorder{}
	server := rec.server(t)

	fake := contracttest.New()
	watcher := NewWatcher(fake, NewMetaClient(server.URL), func() string { return "Council Vote" })
	runWatcher(t, watcher)

	fake.Emit(contract.Event{Kind: contract.EventElectionEnded, Timestamp: 1735000000})

	updates := rec.wait(t, 1)
	update := updates[0]

	if update.EndTime == nil || *update.EndTime != "2024-12-24T00:26:40Z" {
		t.Errorf("expected end_time 2024-12-24T00:26:40Z, got %+v", update.EndTime)
	}
	if update.ElectionName != nil {
		t.Errorf("end push must not touch election_name, got %v", *update.ElectionName)
	}
	if update.StartTime != nil {
		t.Errorf("end push must not touch start_time, got %v", *update.StartTime)
	}
}

func TestWatcher_NameCapturedAtEventTime(t *testing.T) {
	rec := &upsertRecorder{}
	server := rec.server(t)

	var mu sync.Mutex
	name := "Draft Name"
	fake := contracttest.New()
	watcher := NewWatcher(fake, NewMetaClient(server.URL), func() string {
		mu.Lock()
		defer mu.Unlock()
		return name
	})
	runWatcher(t, watcher)

	// The admin renames before the start event fires; the push must carry
	// the value current at event time
	mu.Lock()
	name = "Council Vote"
	mu.Unlock()

	fake.Emit(contract.Event{Kind: contract.EventElectionStarted, Timestamp: 1735000000})

	updates := rec.wait(t, 1)
	if updates[0].ElectionName == nil || *updates[0].ElectionName != "Council Vote" {
		t.Errorf("expected name captured at event time, got %+v", updates[0].ElectionName)
	}
}

func TestWatcher_OtherEventsDoNotPush(t *testing.T) {
	rec := &upsertRecorder{}
	server := rec.server(t)

	fake := contracttest.New()
	watcher := NewWatcher(fake, NewMetaClient(server.URL), nil)
	runWatcher(t, watcher)

	fake.Emit(contract.Event{Kind: contract.EventCandidateAdded, CandidateID: 1, Name: "Alice"})
	fake.Emit(contract.Event{Kind: contract.EventVoteCast, CandidateID: 1})
	fake.Emit(contract.Event{Kind: contract.EventElectionEnded, Timestamp: 1735000000})

	// Only the phase transition produces a push
	updates := rec.wait(t, 1)
	if len(updates) != 1 {
		t.Errorf("expected exactly 1 upsert, got %d", len(updates))
	}
	if updates[0].EndTime == nil {
		t.Errorf("expected the single push to be the end_time write, got %+v", updates[0])
	}
}

func TestWatcher_RetriesFailedPush(t *testing.T) {
	var mu sync.Mutex
	failures := 2
	var updates []models.UpsertMetaRequest

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/elections/meta", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if failures > 0 {
			failures--
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var update models.UpsertMetaRequest
		json.NewDecoder(r.Body).Decode(&update)
		updates = append(updates, update)
		json.NewEncoder(w).Encode(models.UpsertMetaResponse{Success: true})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fake := contracttest.New()
	watcher := NewWatcher(fake, NewMetaClient(server.URL), nil)
	watcher.RetryDelay = 10 * time.Millisecond
	runWatcher(t, watcher)

	fake.Emit(contract.Event{Kind: contract.EventElectionEnded, Timestamp: 1735000000})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		done := len(updates) == 1
		mu.Unlock()
		if done {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("push was not retried to success")
}

func TestWatcher_RedeliveryIsIdempotent(t *testing.T) {
	rec := &upsertRecorder{}
	server := rec.server(t)

	fake := contracttest.New()
	watcher := NewWatcher(fake, NewMetaClient(server.URL), nil)
	runWatcher(t, watcher)

	// At-least-once delivery: the same confirmed event arrives twice
	fake.Emit(contract.Event{Kind: contract.EventElectionEnded, Timestamp: 1735000000})
	fake.Emit(contract.Event{Kind: contract.EventElectionEnded, Timestamp: 1735000000})

	updates := rec.wait(t, 2)
	if *updates[0].EndTime != *updates[1].EndTime {
		t.Errorf("redelivered event produced a different write: %v vs %v", *updates[0].EndTime, *updates[1].EndTime)
	}
}

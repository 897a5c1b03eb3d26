// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/chain-ballot/contract/contracttest"
	"github.com/danielhkuo/chain-ballot/models"
	"github.com/danielhkuo/chain-ballot/reconcile"
	"github.com/danielhkuo/chain-ballot/testutil"
)

// TestReconciliationRoundTrip walks the full admin flow end to end: the
// admin names the election through the API, the chain-side watcher pushes
// the block timestamps as the contract moves through its phases, and
// readers polling the API converge on the combined record.
func TestReconciliationRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	server := httptest.NewServer(NewRouter(db, testutil.GetTestConfig()))
	defer server.Close()

	client := reconcile.NewMetaClient(server.URL)
	client.Attempts = 20
	client.Delay = 25 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Admin names the election before anything is on chain.
	name := "Council Vote"
	if err := client.UpsertMeta(ctx, models.UpsertMetaRequest{ElectionName: &name}); err != nil {
		t.Fatalf("Failed to upsert name: %v", err)
	}

	meta, err := client.GetMeta(ctx)
	if err != nil {
		t.Fatalf("Failed to fetch meta: %v", err)
	}
	if meta.ElectionName != "Council Vote" {
		t.Errorf("Expected name 'Council Vote', got '%s'", meta.ElectionName)
	}
	if meta.StartTime != nil {
		t.Errorf("Expected no start time yet, got %v", *meta.StartTime)
	}

	// Chain side comes up: fixed block clock so the pushed timestamps are
	// predictable.
	fake := contracttest.New()
	fake.Now = func() uint64 { return 1735000000 }

	watcher := reconcile.NewWatcher(fake, client, func() string { return "Council Vote" })
	watcher.RetryDelay = 10 * time.Millisecond

	watcherCtx, stopWatcher := context.WithCancel(ctx)
	defer stopWatcher()
	go watcher.Run(watcherCtx)

	if _, err := fake.StartElection(ctx); err != nil {
		t.Fatalf("Failed to start election: %v", err)
	}

	// A reader polling for the start time converges once the push lands.
	meta, err = client.ForceLoadMeta(ctx, func(m models.MetaResponse) bool {
		return m.StartTime != nil && *m.StartTime != ""
	})
	if err != nil {
		t.Fatalf("Start time never landed: %v", err)
	}
	if *meta.StartTime != "2024-12-24 00:26:40" {
		t.Errorf("Expected start time '2024-12-24 00:26:40', got '%s'", *meta.StartTime)
	}
	if meta.ElectionName != "Council Vote" {
		t.Errorf("Start push must not clobber the name, got '%s'", meta.ElectionName)
	}

	fake.Now = func() uint64 { return 1735000600 }
	if _, err := fake.EndElection(ctx); err != nil {
		t.Fatalf("Failed to end election: %v", err)
	}

	meta, err = client.ForceLoadMeta(ctx, reconcile.RequireEndTime)
	if err != nil {
		t.Fatalf("End time never landed: %v", err)
	}
	if *meta.EndTime != "2024-12-24 00:36:40" {
		t.Errorf("Expected end time '2024-12-24 00:36:40', got '%s'", *meta.EndTime)
	}
	if *meta.StartTime != "2024-12-24 00:26:40" {
		t.Errorf("End push must not clobber the start time, got '%s'", *meta.StartTime)
	}
}

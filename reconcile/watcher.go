// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/danielhkuo/chain-ballot/contract"
	"github.com/danielhkuo/chain-ballot/models"
)

// Watcher is the push side of the reconciliation protocol: it consumes
// confirmed contract events and copies the blockchain-emitted timestamps
// into the metadata store. Event delivery is at-least-once and the upserts
// are idempotent, so redelivery is harmless.
type Watcher struct {
	Source contract.EventSource
	Meta   *MetaClient

	// NameSource supplies the admin-entered election name. It is read at
	// the moment ElectionStarted fires, not earlier.
	NameSource func() string

	// Failed pushes are retried this many times before the event is
	// dropped with an error log.
	PushRetries int
	RetryDelay  time.Duration
}

func NewWatcher(source contract.EventSource, meta *MetaClient, nameSource func() string) *Watcher {
	return &Watcher{
		Source:      source,
		Meta:        meta,
		NameSource:  nameSource,
		PushRetries: 3,
		RetryDelay:  time.Second,
	}
}

// Run blocks consuming events until ctx is cancelled or the subscription
// fails.
func (w *Watcher) Run(ctx context.Context) error {
	events, errs, err := w.Source.WatchEvents(ctx)
	if err != nil {
		return err
	}

	slog.Info("watching contract events")

	for {
		select {
		case ev := <-events:
			w.handle(ctx, ev)
		case err := <-errs:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev contract.Event) {
	switch ev.Kind {
	case contract.EventElectionStarted:
		iso := BlockTimeISO(ev.Timestamp)
		update := models.UpsertMetaRequest{StartTime: &iso}

		// Capture the name now; the admin may still have been typing when
		// the start transaction was submitted.
		if w.NameSource != nil {
			if name := w.NameSource(); name != "" {
				update.ElectionName = &name
			}
		}

		slog.Info("election started", "block_time", iso)
		w.push(ctx, update)

	case contract.EventElectionEnded:
		iso := BlockTimeISO(ev.Timestamp)

		// End only touches end_time; name and start_time stay as written.
		slog.Info("election ended", "block_time", iso)
		w.push(ctx, models.UpsertMetaRequest{EndTime: &iso})

	case contract.EventCandidateAdded:
		slog.Info("candidate added", "id", ev.CandidateID, "name", ev.Name)

	case contract.EventVoteCast:
		slog.Info("vote cast", "candidate_id", ev.CandidateID)
	}
}

// push writes the update with bounded retries. Readers poll until the
// write lands, so a dropped update after exhausted retries surfaces to
// them as MetadataNotReady.
func (w *Watcher) push(ctx context.Context, update models.UpsertMetaRequest) {
	retries := w.PushRetries
	if retries < 1 {
		retries = 1
	}

	var err error
	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(w.RetryDelay):
			case <-ctx.Done():
				return
			}
		}

		if err = w.Meta.UpsertMeta(ctx, update); err == nil {
			return
		}
		slog.Warn("metadata push failed", "attempt", attempt+1, "error", err)
	}

	slog.Error("metadata push dropped after retries", "error", err)
}

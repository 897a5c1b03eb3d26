// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package reconcile implements both sides of the reconciliation protocol
between the voting contract and the off-chain metadata store.

The two sides never share a clock: the push side is driven by chain
confirmation, the pull side by page load. They rendezvous on the metadata
row.

# Push side

Watcher consumes the contract's event stream. On ElectionStarted it writes
the block timestamp (and the admin-entered name, captured at event time) to
the metadata API; on ElectionEnded it writes the end timestamp only.
Upserts are partial, so the two writes never clobber each other's fields.

	watcher := reconcile.NewWatcher(facade, metaClient, nameSource)
	err := watcher.Run(ctx)

# Pull side

ForceLoadMeta polls the metadata API with a fixed delay until the caller's
required fields are present, up to a fixed attempt ceiling:

	meta, err := client.ForceLoadMeta(ctx, reconcile.RequireEndTime)
	if errors.Is(err, reconcile.ErrMetadataNotReady) { ... }

The ceiling bounds the worst-case wait; whether ErrMetadataNotReady is
fatal depends on the view (the results page cannot proceed without
end_time, the admin and voter pages degrade to blank fields).

# Timestamps

Block timestamps enter as seconds since epoch and are converted with
BlockTimeISO. Stored timestamps come back in either the ISO "T" shape or
the space-separated storage shape; ParseStoredTime accepts both and
FormatLocal renders them in the reader's local time.
*/
package reconcile

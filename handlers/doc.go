// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the chain-ballot API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - ElectionHandler: the election metadata singleton (read + partial upsert)
  - VoterHandler: voter registration, vote logging, status lookup

Handlers are created via constructor functions that accept *sql.DB and Config:

	electionHandler := handlers.NewElectionHandler(db, cfg)

# Metadata Flow

The metadata row is written from two directions: the admin names the
election before it starts, and the reconciler copies blockchain-confirmed
timestamps in after phase transitions:

	GET  /api/elections/meta  → GetMeta (empty defaults before first write)
	POST /api/elections/meta  → UpsertMeta (partial update, lazy row creation)

UpsertMeta only touches the fields present in the request body, so a
start_time write from the reconciler never clobbers the admin's name.

# Voter Flow

Voters are keyed by lowercase-normalized wallet address:

	POST /api/voters/register        → Register (idempotent)
	POST /api/voters/voted           → MarkVoted (idempotent per wallet)
	GET  /api/voters/status/{wallet} → GetStatus (false for unknown wallets)

MarkVoted guards against duplicates with an existence check on vote_logs,
not a storage constraint; see the method comment for the race window this
leaves open.

# Authorization

There is none here. Write access to the election itself is gated by wallet
signatures on-chain; this API trusts its caller.
*/
package handlers

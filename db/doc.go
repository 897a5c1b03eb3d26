// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db provides database schema creation.

CreateSchema creates the three tables the coordinator persists:

  - election_meta: singleton metadata row (fixed id = 1)
  - voters: one row per normalized wallet address
  - vote_logs: append-only log of confirmed votes

All statements use IF NOT EXISTS, so CreateSchema is safe to call on every
startup.
*/
package db

/*
Package main provides the entry point for the chain-ballot API server.

chain-ballot coordinates a voting session between an on-chain Voting
contract (authoritative for candidates, votes, and election phase) and a
relational store (authoritative for human-readable election metadata). The
server owns the store side: the election metadata singleton and the voter
registry.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... go run main.go

Or with flags:

	go run main.go -p 3000 -d "postgres://..."

A .env file in the working directory is loaded automatically.

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string

Optional settings:

  - PORT (-p): Server port (default: 3000)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (election metadata, voter registry)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - wallet: Address normalization and validation
  - db: Schema creation
  - cliparse: Configuration parsing

The on-chain side lives in separate packages and binaries:

  - contract: read/write facade over the Voting contract
  - reconcile: push/pull reconciliation between chain events and this API
  - cmd/reconciler: daemon that copies blockchain-confirmed timestamps into
    the metadata store
  - cmd/results: terminal results view

See package documentation for each component.
*/
package main

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - UpsertMetaRequest: election_name, start_time, end_time (all optional;
    pointer fields distinguish "absent" from "empty")
  - RegisterVoterRequest: walletAddress
  - MarkVotedRequest: walletAddress, txHash

# Response Types

Types for JSON responses, all carrying a `success` flag:

  - MetaResponse: election_name, start_time, end_time
  - UpsertMetaResponse, RegisterVoterResponse, MarkVotedResponse: message
  - VoterStatusResponse: hasVoted
  - ErrorResponse: error

# Domain Types

Internal data structures:

  - ElectionMeta: the singleton metadata row (name, start, end)
  - VoterRecord: one row per normalized wallet address
  - VoteLogEntry: append-only log of confirmed votes

# Constants

	MetaRowID           = 1          // fixed primary key of the singleton row
	DefaultElectionName = "Election" // placeholder before the admin names it
*/
package models

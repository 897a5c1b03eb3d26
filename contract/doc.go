// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package contract is a read/write facade over the external Voting contract.

The contract owns candidates, votes, and the election phase; nothing here
reimplements that state machine. The package exposes three capability
interfaces so the rest of the system can be tested against fakes:

  - Caller: phase query, candidate enumeration, tallies, winner lookup
  - Transactor: addCandidate / startElection / endElection / vote, each
    returning a pending transaction to await with WaitMined
  - EventSource: WatchEvents, a merged at-least-once stream of
    CandidateAdded, ElectionStarted, ElectionEnded and VoteCast

Binding implements all three over go-ethereum (ethclient + a hand-rolled
bound contract, abigen style):

	facade, err := contract.Dial(ctx, rpcURL, contractAddr)

Winner queries are undefined when no votes were cast; callers check
TotalVotes first and present "no winner" themselves.
*/
package contract

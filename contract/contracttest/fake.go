// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package contracttest provides an in-memory Voting contract for tests.
package contracttest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/danielhkuo/chain-ballot/contract"
)

var ErrWrongPhase = errors.New("operation not allowed in current phase")

// Fake implements contract.Caller, contract.Transactor and
// contract.EventSource with in-memory state. Transactions "confirm"
// immediately: the state change applies and the matching event is emitted
// before the method returns.
type Fake struct {
	mu         sync.Mutex
	phase      contract.Phase
	candidates []contract.Candidate
	admin      common.Address
	nonce      uint64

	events chan contract.Event
	errs   chan error

	// Now supplies block timestamps for ElectionStarted/ElectionEnded.
	Now func() uint64
}

func New() *Fake {
	return &Fake{
		admin:  common.HexToAddress("0x00000000000000000000000000000000000000ad"),
		events: make(chan contract.Event, 64),
		errs:   make(chan error, 1),
		Now: func() uint64 {
			return uint64(time.Now().Unix())
		},
	}
}

func (f *Fake) WatchEvents(ctx context.Context) (<-chan contract.Event, <-chan error, error) {
	return f.events, f.errs, nil
}

// Emit injects an event directly, bypassing state changes. Useful for
// at-least-once redelivery scenarios.
func (f *Fake) Emit(ev contract.Event) {
	f.events <- ev
}

// Fail injects a subscription error.
func (f *Fake) Fail(err error) {
	f.errs <- err
}

func (f *Fake) Status(ctx context.Context) (contract.Phase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase, nil
}

func (f *Fake) CandidatesCount(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint64(len(f.candidates)), nil
}

func (f *Fake) Candidate(ctx context.Context, id uint64) (contract.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id < 1 || id > uint64(len(f.candidates)) {
		return contract.Candidate{}, errors.New("candidate id out of range")
	}
	return f.candidates[id-1], nil
}

func (f *Fake) VoteCount(ctx context.Context, id uint64) (uint64, error) {
	c, err := f.Candidate(ctx, id)
	if err != nil {
		return 0, err
	}
	return c.VoteCount, nil
}

func (f *Fake) WinnerID(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var winner uint64
	var best uint64
	for _, c := range f.candidates {
		if c.VoteCount > best {
			best = c.VoteCount
			winner = c.ID
		}
	}
	return winner, nil
}

func (f *Fake) WinnerName(ctx context.Context) (string, error) {
	id, err := f.WinnerID(ctx)
	if err != nil || id == 0 {
		return "", err
	}
	c, err := f.Candidate(ctx, id)
	if err != nil {
		return "", err
	}
	return c.Name, nil
}

func (f *Fake) Admin(ctx context.Context) (common.Address, error) {
	return f.admin, nil
}

func (f *Fake) AddCandidate(ctx context.Context, name string) (*types.Transaction, error) {
	f.mu.Lock()
	if f.phase != contract.PhaseNotStarted {
		f.mu.Unlock()
		return nil, ErrWrongPhase
	}
	id := uint64(len(f.candidates) + 1)
	f.candidates = append(f.candidates, contract.Candidate{ID: id, Name: name})
	tx := f.newTx()
	f.mu.Unlock()

	f.events <- contract.Event{Kind: contract.EventCandidateAdded, CandidateID: id, Name: name}
	return tx, nil
}

func (f *Fake) StartElection(ctx context.Context) (*types.Transaction, error) {
	f.mu.Lock()
	if f.phase != contract.PhaseNotStarted {
		f.mu.Unlock()
		return nil, ErrWrongPhase
	}
	f.phase = contract.PhaseActive
	ts := f.Now()
	tx := f.newTx()
	f.mu.Unlock()

	f.events <- contract.Event{Kind: contract.EventElectionStarted, Timestamp: ts}
	return tx, nil
}

func (f *Fake) EndElection(ctx context.Context) (*types.Transaction, error) {
	f.mu.Lock()
	if f.phase != contract.PhaseActive {
		f.mu.Unlock()
		return nil, ErrWrongPhase
	}
	f.phase = contract.PhaseEnded
	ts := f.Now()
	tx := f.newTx()
	f.mu.Unlock()

	f.events <- contract.Event{Kind: contract.EventElectionEnded, Timestamp: ts}
	return tx, nil
}

func (f *Fake) Vote(ctx context.Context, id uint64) (*types.Transaction, error) {
	f.mu.Lock()
	if f.phase != contract.PhaseActive {
		f.mu.Unlock()
		return nil, ErrWrongPhase
	}
	if id < 1 || id > uint64(len(f.candidates)) {
		f.mu.Unlock()
		return nil, errors.New("candidate id out of range")
	}
	f.candidates[id-1].VoteCount++
	tx := f.newTx()
	f.mu.Unlock()

	f.events <- contract.Event{Kind: contract.EventVoteCast, CandidateID: id}
	return tx, nil
}

func (f *Fake) newTx() *types.Transaction {
	f.nonce++
	return types.NewTx(&types.LegacyTx{Nonce: f.nonce})
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contract

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// EventKind identifies which contract event an Event carries.
type EventKind int

const (
	EventCandidateAdded EventKind = iota
	EventElectionStarted
	EventElectionEnded
	EventVoteCast
)

func (k EventKind) String() string {
	switch k {
	case EventCandidateAdded:
		return "CandidateAdded"
	case EventElectionStarted:
		return "ElectionStarted"
	case EventElectionEnded:
		return "ElectionEnded"
	case EventVoteCast:
		return "VoteCast"
	default:
		return "Unknown"
	}
}

// Event is one confirmed contract event. Which fields are set depends on
// Kind: Timestamp for ElectionStarted/ElectionEnded (block time, seconds
// since epoch), CandidateID and Name for CandidateAdded, Voter and
// CandidateID for VoteCast.
type Event struct {
	Kind        EventKind
	Timestamp   uint64
	CandidateID uint64
	Name        string
	Voter       common.Address
}

type candidateAddedLog struct {
	Id   *big.Int
	Name string
}

type electionStartedLog struct {
	Timestamp *big.Int
}

type electionEndedLog struct {
	Timestamp *big.Int
}

type voteCastLog struct {
	Voter common.Address
	Id    *big.Int
}

// WatchEvents subscribes to all four Voting events and merges them into a
// single channel. Delivery is at-least-once per confirmed transaction;
// consumers must be idempotent. The subscription ends when ctx is
// cancelled or the backend drops it, in which case an error is sent on the
// error channel.
func (b *Binding) WatchEvents(ctx context.Context) (<-chan Event, <-chan error, error) {
	events := make(chan Event, 16)
	errs := make(chan error, 1)
	opts := &bind.WatchOpts{Context: ctx}

	var subs []event.Subscription
	unsubscribeAll := func() {
		for _, s := range subs {
			s.Unsubscribe()
		}
	}

	watch := func(name string, convert func(types.Log) (Event, error)) error {
		logs, sub, err := b.bound.WatchLogs(opts, name)
		if err != nil {
			return err
		}
		subs = append(subs, sub)

		go func() {
			defer sub.Unsubscribe()
			for {
				select {
				case lg := <-logs:
					ev, err := convert(lg)
					if err != nil {
						// A log that fails to unpack is a bug in the ABI,
						// not a transient condition; surface it and stop.
						select {
						case errs <- err:
						default:
						}
						return
					}
					select {
					case events <- ev:
					case <-ctx.Done():
						return
					}
				case err := <-sub.Err():
					if err != nil {
						select {
						case errs <- err:
						default:
						}
					}
					return
				case <-ctx.Done():
					return
				}
			}
		}()
		return nil
	}

	watchers := []struct {
		name    string
		convert func(types.Log) (Event, error)
	}{
		{"CandidateAdded", func(lg types.Log) (Event, error) {
			var out candidateAddedLog
			if err := b.bound.UnpackLog(&out, "CandidateAdded", lg); err != nil {
				return Event{}, err
			}
			return Event{Kind: EventCandidateAdded, CandidateID: out.Id.Uint64(), Name: out.Name}, nil
		}},
		{"ElectionStarted", func(lg types.Log) (Event, error) {
			var out electionStartedLog
			if err := b.bound.UnpackLog(&out, "ElectionStarted", lg); err != nil {
				return Event{}, err
			}
			return Event{Kind: EventElectionStarted, Timestamp: out.Timestamp.Uint64()}, nil
		}},
		{"ElectionEnded", func(lg types.Log) (Event, error) {
			var out electionEndedLog
			if err := b.bound.UnpackLog(&out, "ElectionEnded", lg); err != nil {
				return Event{}, err
			}
			return Event{Kind: EventElectionEnded, Timestamp: out.Timestamp.Uint64()}, nil
		}},
		{"VoteCast", func(lg types.Log) (Event, error) {
			var out voteCastLog
			if err := b.bound.UnpackLog(&out, "VoteCast", lg); err != nil {
				return Event{}, err
			}
			return Event{Kind: EventVoteCast, Voter: out.Voter, CandidateID: out.Id.Uint64()}, nil
		}},
	}

	for _, w := range watchers {
		if err := watch(w.name, w.convert); err != nil {
			unsubscribeAll()
			return nil, nil, err
		}
	}

	return events, errs, nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Phase is the contract's lifecycle state.
type Phase uint8

const (
	PhaseNotStarted Phase = iota
	PhaseActive
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "Not Started"
	case PhaseActive:
		return "Ongoing"
	case PhaseEnded:
		return "Ended"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// Candidate mirrors the contract's Candidate struct. Candidates are
// numbered 1..candidatesCount.
type Candidate struct {
	ID        uint64
	Name      string
	VoteCount uint64
}

// Caller is the read surface of the Voting contract.
type Caller interface {
	Status(ctx context.Context) (Phase, error)
	CandidatesCount(ctx context.Context) (uint64, error)
	Candidate(ctx context.Context, id uint64) (Candidate, error)
	VoteCount(ctx context.Context, id uint64) (uint64, error)
	WinnerID(ctx context.Context) (uint64, error)
	WinnerName(ctx context.Context) (string, error)
	Admin(ctx context.Context) (common.Address, error)
}

// Transactor is the write surface. Every method returns a pending
// transaction; the effect is durable only after the transaction is mined.
type Transactor interface {
	AddCandidate(ctx context.Context, name string) (*types.Transaction, error)
	StartElection(ctx context.Context) (*types.Transaction, error)
	EndElection(ctx context.Context) (*types.Transaction, error)
	Vote(ctx context.Context, id uint64) (*types.Transaction, error)
}

// EventSource delivers confirmed contract events, at least once per mined
// transaction. Ordering across distinct event types is not guaranteed.
type EventSource interface {
	WatchEvents(ctx context.Context) (<-chan Event, <-chan error, error)
}

var ErrNoTransactor = errors.New("contract binding has no signing key configured")

// Binding is the ethclient-backed implementation of Caller, Transactor and
// EventSource.
type Binding struct {
	address common.Address
	client  *ethclient.Client
	bound   *bind.BoundContract
	opts    *bind.TransactOpts
}

// Dial connects to an RPC endpoint and binds the Voting contract at the
// given address. The binding is read-only until WithSigner is called.
func Dial(ctx context.Context, rpcURL, address string) (*Binding, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid contract address %q", address)
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}

	parsed, err := abi.JSON(strings.NewReader(VotingABI))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to parse voting ABI: %w", err)
	}

	addr := common.HexToAddress(address)
	return &Binding{
		address: addr,
		client:  client,
		bound:   bind.NewBoundContract(addr, parsed, client, client, client),
	}, nil
}

// WithSigner configures the binding for state-changing calls.
func (b *Binding) WithSigner(privateKeyHex string, chainID *big.Int) error {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return fmt.Errorf("failed to parse private key: %w", err)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return fmt.Errorf("failed to create transactor: %w", err)
	}

	b.opts = opts
	return nil
}

func (b *Binding) Close() {
	b.client.Close()
}

func (b *Binding) Address() common.Address {
	return b.address
}

func (b *Binding) call(ctx context.Context, method string, params ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := b.bound.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return nil, fmt.Errorf("contract call %s failed: %w", method, err)
	}
	return out, nil
}

func (b *Binding) transact(ctx context.Context, method string, params ...interface{}) (*types.Transaction, error) {
	if b.opts == nil {
		return nil, ErrNoTransactor
	}
	opts := *b.opts
	opts.Context = ctx
	tx, err := b.bound.Transact(&opts, method, params...)
	if err != nil {
		return nil, fmt.Errorf("contract transaction %s failed: %w", method, err)
	}
	return tx, nil
}

func (b *Binding) Status(ctx context.Context) (Phase, error) {
	out, err := b.call(ctx, "electionStatus")
	if err != nil {
		return PhaseNotStarted, err
	}
	return Phase(*abi.ConvertType(out[0], new(uint8)).(*uint8)), nil
}

func (b *Binding) CandidatesCount(ctx context.Context) (uint64, error) {
	out, err := b.call(ctx, "candidatesCount")
	if err != nil {
		return 0, err
	}
	return (*abi.ConvertType(out[0], new(*big.Int)).(**big.Int)).Uint64(), nil
}

// rawCandidate matches the ABI tuple layout of Voting.Candidate.
type rawCandidate struct {
	Id        *big.Int
	Name      string
	VoteCount *big.Int
}

func (b *Binding) Candidate(ctx context.Context, id uint64) (Candidate, error) {
	out, err := b.call(ctx, "getCandidate", new(big.Int).SetUint64(id))
	if err != nil {
		return Candidate{}, err
	}

	raw := *abi.ConvertType(out[0], new(rawCandidate)).(*rawCandidate)
	return Candidate{
		ID:        raw.Id.Uint64(),
		Name:      raw.Name,
		VoteCount: raw.VoteCount.Uint64(),
	}, nil
}

func (b *Binding) VoteCount(ctx context.Context, id uint64) (uint64, error) {
	out, err := b.call(ctx, "voteCount", new(big.Int).SetUint64(id))
	if err != nil {
		return 0, err
	}
	return (*abi.ConvertType(out[0], new(*big.Int)).(**big.Int)).Uint64(), nil
}

// WinnerID is only meaningful in the Ended phase with at least one vote
// cast; callers check TotalVotes first.
func (b *Binding) WinnerID(ctx context.Context) (uint64, error) {
	out, err := b.call(ctx, "getWinnerID")
	if err != nil {
		return 0, err
	}
	return (*abi.ConvertType(out[0], new(*big.Int)).(**big.Int)).Uint64(), nil
}

func (b *Binding) WinnerName(ctx context.Context) (string, error) {
	out, err := b.call(ctx, "getWinnerName")
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func (b *Binding) Admin(ctx context.Context) (common.Address, error) {
	out, err := b.call(ctx, "admin")
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (b *Binding) AddCandidate(ctx context.Context, name string) (*types.Transaction, error) {
	return b.transact(ctx, "addCandidate", name)
}

func (b *Binding) StartElection(ctx context.Context) (*types.Transaction, error) {
	return b.transact(ctx, "startElection")
}

func (b *Binding) EndElection(ctx context.Context) (*types.Transaction, error) {
	return b.transact(ctx, "endElection")
}

func (b *Binding) Vote(ctx context.Context, id uint64) (*types.Transaction, error) {
	return b.transact(ctx, "vote", new(big.Int).SetUint64(id))
}

// WaitMined blocks until the transaction is confirmed.
func (b *Binding) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, b.client, tx)
}

// List enumerates all candidates by sequential id.
func List(ctx context.Context, c Caller) ([]Candidate, error) {
	count, err := c.CandidatesCount(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, count)
	for i := uint64(1); i <= count; i++ {
		candidate, err := c.Candidate(ctx, i)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

// TotalVotes sums the tally across all candidates. A zero total means "no
// winner": the winner queries must not be issued.
func TotalVotes(ctx context.Context, c Caller) (uint64, error) {
	count, err := c.CandidatesCount(ctx)
	if err != nil {
		return 0, err
	}

	var total uint64
	for i := uint64(1); i <= count; i++ {
		votes, err := c.VoteCount(ctx, i)
		if err != nil {
			return 0, err
		}
		total += votes
	}
	return total, nil
}

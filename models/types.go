// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// The election_meta table holds exactly one row with this id.
const MetaRowID = 1

// Placeholder name used when the singleton row is created before the admin
// has supplied one.
const DefaultElectionName = "Election"

// Request types

type UpsertMetaRequest struct {
	ElectionName *string `json:"election_name,omitempty"`
	StartTime    *string `json:"start_time,omitempty"`
	EndTime      *string `json:"end_time,omitempty"`
}

type RegisterVoterRequest struct {
	WalletAddress string `json:"walletAddress"`
}

type MarkVotedRequest struct {
	WalletAddress string `json:"walletAddress"`
	TxHash        string `json:"txHash"`
}

// Response types

type MetaResponse struct {
	Success      bool    `json:"success"`
	ElectionName string  `json:"election_name"`
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
}

type UpsertMetaResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type RegisterVoterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type MarkVotedResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type VoterStatusResponse struct {
	Success  bool `json:"success"`
	HasVoted bool `json:"hasVoted"`
}

type BannerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Domain types

type ElectionMeta struct {
	ElectionName string     `json:"election_name"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
}

type VoterRecord struct {
	WalletAddress string    `json:"wallet_address"`
	HasVoted      bool      `json:"has_voted"`
	RegisteredAt  time.Time `json:"registered_at"`
}

type VoteLogEntry struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	TxHash        string    `json:"tx_hash"`
	VotedAt       time.Time `json:"voted_at"`
}

// Error response

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/chain-ballot/cliparse"
	"github.com/danielhkuo/chain-ballot/middleware"
	"github.com/danielhkuo/chain-ballot/models"
	"github.com/danielhkuo/chain-ballot/wallet"
)

type VoterHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVoterHandler(db *sql.DB, cfg cliparse.Config) *VoterHandler {
	return &VoterHandler{db: db, cfg: cfg}
}

// Register handles POST /api/voters/register
// Idempotent: re-registering an existing wallet is a no-op success.
func (h *VoterHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	address, err := wallet.Validate(req.WalletAddress)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, walletErrorMessage(err))
		return
	}

	// Single conditional insert: concurrent registrations of the same
	// wallet still produce exactly one row.
	result, err := h.db.Exec(`
		INSERT INTO voters (wallet_address, has_voted, registered_at)
		VALUES ($1, FALSE, $2)
		ON CONFLICT (wallet_address) DO NOTHING
	`, address, time.Now())

	if err != nil {
		slog.Error("failed to register wallet", "error", err, "wallet", address)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register wallet")
		return
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		slog.Error("failed to read rows affected", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register wallet")
		return
	}

	if inserted == 0 {
		middleware.JSONResponse(w, http.StatusOK, models.RegisterVoterResponse{
			Success: true,
			Message: "Wallet already registered",
		})
		return
	}

	slog.Info("wallet registered", "wallet", wallet.Short(address))

	middleware.JSONResponse(w, http.StatusOK, models.RegisterVoterResponse{
		Success: true,
		Message: "Wallet registered successfully",
	})
}

// MarkVoted handles POST /api/voters/voted
// Flags the voter and appends a vote log entry. The log existence check
// makes repeated calls for the same wallet a no-op success, but the check
// and the two writes are not atomic: concurrent calls for one wallet can
// both pass the check and insert two log rows.
func (h *VoterHandler) MarkVoted(w http.ResponseWriter, r *http.Request) {
	var req models.MarkVotedRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	address, err := wallet.Validate(req.WalletAddress)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Wallet address and transaction hash are required")
		return
	}

	txHash := strings.TrimSpace(req.TxHash)
	if txHash == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Wallet address and transaction hash are required")
		return
	}

	// Idempotent short-circuit: one log entry per wallet
	var exists bool
	err = h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM vote_logs WHERE wallet_address = $1)
	`, address).Scan(&exists)

	if err != nil {
		slog.Error("failed to check vote logs", "error", err, "wallet", address)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to check vote logs")
		return
	}

	if exists {
		middleware.JSONResponse(w, http.StatusOK, models.MarkVotedResponse{
			Success: true,
			Message: "Vote already logged",
		})
		return
	}

	// Mark voter as voted
	_, err = h.db.Exec(`
		UPDATE voters SET has_voted = TRUE WHERE wallet_address = $1
	`, address)

	if err != nil {
		slog.Error("failed to update voting status", "error", err, "wallet", address)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update voting status")
		return
	}

	// Insert vote log with server-assigned time
	_, err = h.db.Exec(`
		INSERT INTO vote_logs (id, wallet_address, tx_hash, voted_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.NewString(), address, txHash, time.Now())

	if err != nil {
		slog.Error("failed to insert vote log", "error", err, "wallet", address)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log vote")
		return
	}

	slog.Info("vote recorded", "wallet", wallet.Short(address), "tx_hash", txHash)

	middleware.JSONResponse(w, http.StatusOK, models.MarkVotedResponse{
		Success: true,
		Message: "Vote recorded successfully",
	})
}

// GetStatus handles GET /api/voters/status/{wallet}
// Unknown wallets present as "has not voted", never as an error.
func (h *VoterHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	address, err := wallet.Validate(r.PathValue("wallet"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, walletErrorMessage(err))
		return
	}

	var hasVoted bool
	err = h.db.QueryRow(`
		SELECT has_voted FROM voters WHERE wallet_address = $1
	`, address).Scan(&hasVoted)

	if err == sql.ErrNoRows {
		middleware.JSONResponse(w, http.StatusOK, models.VoterStatusResponse{
			Success:  true,
			HasVoted: false,
		})
		return
	}
	if err != nil {
		slog.Error("failed to fetch voting status", "error", err, "wallet", address)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch voting status")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoterStatusResponse{
		Success:  true,
		HasVoted: hasVoted,
	})
}

func walletErrorMessage(err error) string {
	if err == wallet.ErrInvalidAddress {
		return "Invalid wallet address"
	}
	return "Wallet address is required"
}

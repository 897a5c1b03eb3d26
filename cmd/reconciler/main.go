// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command reconciler subscribes to Voting contract events and pushes the
// chain-emitted timestamps into the metadata API. Run one instance per
// deployed contract.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"

	"github.com/danielhkuo/chain-ballot/contract"
	"github.com/danielhkuo/chain-ballot/reconcile"
)

func main() {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("reconciler", flag.ExitOnError)
	rpcURL := fs.String("rpc", envOr("RPC_URL", "ws://localhost:8545"), "Ethereum RPC endpoint (websocket for event subscriptions)")
	address := fs.String("contract", os.Getenv("CONTRACT_ADDRESS"), "Voting contract address")
	apiURL := fs.String("api", envOr("API_URL", "http://localhost:3000"), "Metadata API base URL")
	electionName := fs.String("name", os.Getenv("ELECTION_NAME"), "Election name pushed alongside the start timestamp")
	privateKey := fs.String("key", os.Getenv("ADMIN_PRIVATE_KEY"), "Admin private key (optional; enables the admin check)")
	chainID := fs.Int64("chain-id", 1337, "Chain ID for transaction signing")
	fs.Parse(os.Args[1:])

	if *address == "" {
		slog.Error("contract address is required (-contract or CONTRACT_ADDRESS)")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	binding, err := contract.Dial(ctx, *rpcURL, *address)
	if err != nil {
		slog.Error("contract dial failed", "error", err)
		os.Exit(1)
	}
	defer binding.Close()

	// With a key configured, verify it actually holds the admin role. A
	// mismatch does not stop event watching, but any admin transaction
	// issued later would revert.
	if *privateKey != "" {
		if err := binding.WithSigner(*privateKey, big.NewInt(*chainID)); err != nil {
			slog.Error("signer setup failed", "error", err)
			os.Exit(1)
		}
		warnIfNotAdmin(ctx, binding, *privateKey)
	}

	client := reconcile.NewMetaClient(*apiURL)
	watcher := reconcile.NewWatcher(binding, client, func() string { return *electionName })

	slog.Info("reconciler starting", "contract", binding.Address().Hex(), "api", client.BaseURL)

	err = watcher.Run(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		slog.Info("reconciler stopped")
	case err != nil:
		slog.Error("event subscription failed", "error", err)
		os.Exit(1)
	}
}

func warnIfNotAdmin(ctx context.Context, binding *contract.Binding, privateKey string) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return
	}
	signer := crypto.PubkeyToAddress(key.PublicKey)

	admin, err := binding.Admin(ctx)
	if err != nil {
		slog.Warn("admin lookup failed", "error", err)
		return
	}
	if signer != admin {
		slog.Warn("configured key is not the contract admin; admin transactions will revert",
			"signer", signer.Hex(), "admin", admin.Hex())
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

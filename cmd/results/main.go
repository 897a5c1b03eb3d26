// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command results prints the final tally once the election has ended,
// combining the on-chain counts with the off-chain metadata record.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/chain-ballot/contract"
	"github.com/danielhkuo/chain-ballot/reconcile"
	"github.com/danielhkuo/chain-ballot/wallet"
)

func main() {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("results", flag.ExitOnError)
	rpcURL := fs.String("rpc", envOr("RPC_URL", "ws://localhost:8545"), "Ethereum RPC endpoint")
	address := fs.String("contract", os.Getenv("CONTRACT_ADDRESS"), "Voting contract address")
	apiURL := fs.String("api", envOr("API_URL", "http://localhost:3000"), "Metadata API base URL")
	wait := fs.Bool("wait", false, "Block until the election ends instead of exiting")
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

	phase, err := binding.Status(ctx)
	if err != nil {
		slog.Error("status check failed", "error", err)
		os.Exit(1)
	}
	if phase != contract.PhaseEnded {
		if !*wait {
			fmt.Printf("Election status: %s. Results are available after the election ends (use -wait to block).\n", phase)
			return
		}
		if err := waitForEnd(ctx, binding); err != nil {
			slog.Error("wait for election end failed", "error", err)
			os.Exit(1)
		}
	}

	// The end timestamp is written by the reconciler after the chain
	// confirmation; poll until it lands.
	client := reconcile.NewMetaClient(*apiURL)
	meta, err := client.ForceLoadMeta(ctx, reconcile.RequireEndTime)
	if err != nil {
		if errors.Is(err, reconcile.ErrMetadataNotReady) {
			slog.Error("election metadata never arrived; is the reconciler running?")
		} else {
			slog.Error("metadata fetch failed", "error", err)
		}
		os.Exit(1)
	}

	candidates, err := contract.List(ctx, binding)
	if err != nil {
		slog.Error("candidate enumeration failed", "error", err)
		os.Exit(1)
	}

	total, err := contract.TotalVotes(ctx, binding)
	if err != nil {
		slog.Error("tally failed", "error", err)
		os.Exit(1)
	}

	admin, err := binding.Admin(ctx)
	if err != nil {
		slog.Error("admin lookup failed", "error", err)
		os.Exit(1)
	}

	name := meta.ElectionName
	if name == "" {
		name = "Election"
	}

	fmt.Printf("=== %s ===\n", name)
	fmt.Printf("Admin:   %s\n", wallet.Short(admin.Hex()))
	fmt.Printf("Started: %s\n", reconcile.FormatLocal(deref(meta.StartTime)))
	fmt.Printf("Ended:   %s\n", reconcile.FormatLocal(deref(meta.EndTime)))
	fmt.Printf("Total votes: %d\n\n", total)

	for _, c := range candidates {
		pct := 0.0
		if total > 0 {
			pct = float64(c.VoteCount) / float64(total) * 100
		}
		fmt.Printf("  %d. %-20s %6d votes  (%.2f%%)\n", c.ID, c.Name, c.VoteCount, pct)
	}

	// With zero votes the contract's winner getters revert, so do not ask.
	if total == 0 {
		fmt.Println("\nNo votes were cast. There is no winner.")
		return
	}

	winnerName, err := binding.WinnerName(ctx)
	if err != nil {
		slog.Error("winner lookup failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("\nWinner: %s\n", winnerName)
}

// waitForEnd blocks until an ElectionEnded event is delivered. The status
// is re-checked after subscribing to close the race where the election
// ends between the first check and the subscription.
func waitForEnd(ctx context.Context, binding *contract.Binding) error {
	events, errs, err := binding.WatchEvents(ctx)
	if err != nil {
		return err
	}

	phase, err := binding.Status(ctx)
	if err != nil {
		return err
	}
	if phase == contract.PhaseEnded {
		return nil
	}

	slog.Info("waiting for the election to end", "status", phase.String())

	for {
		select {
		case ev := <-events:
			if ev.Kind == contract.EventElectionEnded {
				return nil
			}
		case err := <-errs:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

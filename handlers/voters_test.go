// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/chain-ballot/models"
	"github.com/danielhkuo/chain-ballot/testutil"
)

const testWallet = "0xa88cf86d1b8ba2c50ea28149def9a7048e9213ea"

func TestRegister_NewWallet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewVoterHandler(db, testutil.GetTestConfig())

	req := testutil.MakeRequest("POST", "/api/voters/register", models.RegisterVoterRequest{
		WalletAddress: testWallet,
	}, nil)
	w := httptest.NewRecorder()
	handler.Register(w, req)

	testutil.AssertStatus(t, w, 200)

	var resp models.RegisterVoterResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.Success {
		t.Error("expected success")
	}
	if resp.Message != "Wallet registered successfully" {
		t.Errorf("unexpected message: %q", resp.Message)
	}

	var hasVoted bool
	err := db.QueryRow("SELECT has_voted FROM voters WHERE wallet_address = $1", testWallet).Scan(&hasVoted)
	if err != nil {
		t.Fatalf("Failed to query voter: %v", err)
	}
	if hasVoted {
		t.Error("new voter should start with has_voted = false")
	}
}

func TestRegister_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewVoterHandler(db, testutil.GetTestConfig())

	for i := 0; i < 2; i++ {
		req := testutil.MakeRequest("POST", "/api/voters/register", models.RegisterVoterRequest{
			WalletAddress: testWallet,
		}, nil)
		w := httptest.NewRecorder()
		handler.Register(w, req)

		testutil.AssertStatus(t, w, 200)

		var resp models.RegisterVoterResponse
		testutil.AssertJSON(t, w, &resp)
		if !resp.Success {
			t.Errorf("call %d: expected success", i+1)
		}
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM voters WHERE wallet_address = $1", testWallet).Scan(&count); err != nil {
		t.Fatalf("Failed to count voters: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 voter record, got %d", count)
	}
}

func TestRegister_NormalizesAddress(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewVoterHandler(db, testutil.GetTestConfig())

	// Checksummed with surrounding whitespace; stored form must be
	// lowercase-trimmed
	req := testutil.MakeRequest("POST", "/api/voters/register", models.RegisterVoterRequest{
		WalletAddress: "  0xA88CF86D1B8BA2C50EA28149DEF9A7048E9213EA  ",
	}, nil)
	w := httptest.NewRecorder()
	handler.Register(w, req)
	testutil.AssertStatus(t, w, 200)

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM voters WHERE wallet_address = $1", testWallet).Scan(&count); err != nil {
		t.Fatalf("Failed to count voters: %v", err)
	}
	if count != 1 {
		t.Errorf("expected normalized address in storage, found %d rows", count)
	}

	// Registering the lowercase spelling is the same wallet
	req = testutil.MakeRequest("POST", "/api/voters/register", models.RegisterVoterRequest{
		WalletAddress: testWallet,
	}, nil)
	w = httptest.NewRecorder()
	handler.Register(w, req)

	var resp models.RegisterVoterResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Message != "Wallet already registered" {
		t.Errorf("expected already-registered message, got %q", resp.Message)
	}
}

func TestRegister_InvalidInput(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewVoterHandler(db, testutil.GetTestConfig())

	tests := []struct {
		name          string
		walletAddress string
	}{
		{"empty address", ""},
		{"whitespace address", "   "},
		{"not hex", "not-a-wallet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/api/voters/register", models.RegisterVoterRequest{
				WalletAddress: tt.walletAddress,
			}, nil)
			w := httptest.NewRecorder()
			handler.Register(w, req)

			testutil.AssertStatus(t, w, 400)

			var resp models.ErrorResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Success {
				t.Error("expected success=false on invalid input")
			}
		})
	}
}

func TestMarkVoted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewVoterHandler(db, testutil.GetTestConfig())
	testutil.SeedVoter(t, db, testWallet, false)

	req := testutil.MakeRequest("POST", "/api/voters/voted", models.MarkVotedRequest{
		WalletAddress: testWallet,
		TxHash:        "0xdeadbeef",
	}, nil)
	w := httptest.NewRecorder()
	handler.MarkVoted(w, req)

	testutil.AssertStatus(t, w, 200)

	var resp models.MarkVotedResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Message != "Vote recorded successfully" {
		t.Errorf("unexpected message: %q", resp.Message)
	}

	var hasVoted bool
	if err := db.QueryRow("SELECT has_voted FROM voters WHERE wallet_address = $1", testWallet).Scan(&hasVoted); err != nil {
		t.Fatalf("Failed to query voter: %v", err)
	}
	if !hasVoted {
		t.Error("voter should be flagged has_voted")
	}

	var logCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM vote_logs WHERE wallet_address = $1", testWallet).Scan(&logCount); err != nil {
		t.Fatalf("Failed to count vote logs: %v", err)
	}
	if logCount != 1 {
		t.Errorf("expected 1 vote log entry, got %d", logCount)
	}
}

func TestMarkVoted_IdempotentSerialized(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewVoterHandler(db, testutil.GetTestConfig())
	testutil.SeedVoter(t, db, testWallet, false)

	// First call logs the vote
	req := testutil.MakeRequest("POST", "/api/voters/voted", models.MarkVotedRequest{
		WalletAddress: testWallet,
		TxHash:        "0xtx1",
	}, nil)
	w := httptest.NewRecorder()
	handler.MarkVoted(w, req)
	testutil.AssertStatus(t, w, 200)

	// Second call with a different tx hash is a no-op success
	req = testutil.MakeRequest("POST", "/api/voters/voted", models.MarkVotedRequest{
		WalletAddress: testWallet,
		TxHash:        "0xtx2",
	}, nil)
	w = httptest.NewRecorder()
	handler.MarkVoted(w, req)
	testutil.AssertStatus(t, w, 200)

	var resp models.MarkVotedResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Message != "Vote already logged" {
		t.Errorf("expected already-logged message, got %q", resp.Message)
	}

	var logCount int
	var txHash string
	if err := db.QueryRow("SELECT COUNT(*), MIN(tx_hash) FROM vote_logs WHERE wallet_address = $1", testWallet).Scan(&logCount, &txHash); err != nil {
		t.Fatalf("Failed to count vote logs: %v", err)
	}
	if logCount != 1 {
		t.Errorf("expected exactly 1 vote log entry under serialized calls, got %d", logCount)
	}
	if txHash != "0xtx1" {
		t.Errorf("expected first tx hash to win, got %q", txHash)
	}
}

func TestMarkVoted_InvalidInput(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewVoterHandler(db, testutil.GetTestConfig())

	tests := []struct {
		name string
		body models.MarkVotedRequest
	}{
		{"missing wallet", models.MarkVotedRequest{TxHash: "0xdeadbeef"}},
		{"missing tx hash", models.MarkVotedRequest{WalletAddress: testWallet}},
		{"whitespace tx hash", models.MarkVotedRequest{WalletAddress: testWallet, TxHash: "   "}},
		{"both missing", models.MarkVotedRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/api/voters/voted", tt.body, nil)
			w := httptest.NewRecorder()
			handler.MarkVoted(w, req)

			testutil.AssertStatus(t, w, 400)
		})
	}
}

func TestGetStatus_UnknownWalletDefaultsFalse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewVoterHandler(db, testutil.GetTestConfig())

	req := testutil.MakeRequest("GET", "/api/voters/status/"+testWallet, nil, nil)
	req.SetPathValue("wallet", testWallet)
	w := httptest.NewRecorder()
	handler.GetStatus(w, req)

	testutil.AssertStatus(t, w, 200)

	var resp models.VoterStatusResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.Success {
		t.Error("unknown wallet must not be an error")
	}
	if resp.HasVoted {
		t.Error("unknown wallet should present as has not voted")
	}
}

func TestGetStatus_VotedWallet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewVoterHandler(db, testutil.GetTestConfig())
	testutil.SeedVoter(t, db, testWallet, true)

	// Checksummed path param resolves to the same record
	checksummed := "0xA88CF86D1B8BA2C50EA28149DEF9A7048E9213EA"
	req := testutil.MakeRequest("GET", "/api/voters/status/"+checksummed, nil, nil)
	req.SetPathValue("wallet", checksummed)
	w := httptest.NewRecorder()
	handler.GetStatus(w, req)

	testutil.AssertStatus(t, w, 200)

	var resp models.VoterStatusResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.HasVoted {
		t.Error("expected hasVoted = true")
	}
}

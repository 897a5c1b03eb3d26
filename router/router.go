// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/chain-ballot/cliparse"
	"github.com/danielhkuo/chain-ballot/handlers"
	"github.com/danielhkuo/chain-ballot/middleware"
	"github.com/danielhkuo/chain-ballot/models"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	electionHandler := handlers.NewElectionHandler(db, cfg)
	voterHandler := handlers.NewVoterHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Election metadata
	mux.HandleFunc("GET /api/elections/meta", middleware.WithLogging(electionHandler.GetMeta))
	mux.HandleFunc("POST /api/elections/meta", middleware.WithLogging(electionHandler.UpsertMeta))

	// Voter registry
	mux.HandleFunc("POST /api/voters/register", middleware.WithLogging(voterHandler.Register))
	mux.HandleFunc("POST /api/voters/voted", middleware.WithLogging(voterHandler.MarkVoted))
	mux.HandleFunc("GET /api/voters/status/{wallet}", middleware.WithLogging(voterHandler.GetStatus))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		middleware.JSONResponse(w, http.StatusOK, models.BannerResponse{
			Success: true,
			Message: "Backend running and database connected",
		})
	})

	return mux
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/chain-ballot/cliparse"
	"github.com/danielhkuo/chain-ballot/middleware"
	"github.com/danielhkuo/chain-ballot/models"
)

// StoredTimeLayout is the storage-native shape timestamps take in responses
// (what a raw DATETIME column looks like). Readers must handle this shape
// and ISO-8601.
const StoredTimeLayout = "2006-01-02 15:04:05"

type ElectionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewElectionHandler(db *sql.DB, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{db: db, cfg: cfg}
}

// GetMeta handles GET /api/elections/meta
// Returns the singleton metadata row, or empty-field defaults if no row
// exists yet. Never 404s: an empty store is a valid state before the first
// write.
func (h *ElectionHandler) GetMeta(w http.ResponseWriter, r *http.Request) {
	var name string
	var startTime, endTime sql.NullTime

	err := h.db.QueryRow(`
		SELECT election_name, start_time, end_time
		FROM election_meta
		WHERE id = $1
	`, models.MetaRowID).Scan(&name, &startTime, &endTime)

	if err == sql.ErrNoRows {
		middleware.JSONResponse(w, http.StatusOK, models.MetaResponse{
			Success:      true,
			ElectionName: "",
			StartTime:    nil,
			EndTime:      nil,
		})
		return
	}
	if err != nil {
		slog.Error("failed to query election meta", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch election metadata")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MetaResponse{
		Success:      true,
		ElectionName: name,
		StartTime:    formatStored(startTime),
		EndTime:      formatStored(endTime),
	})
}

// UpsertMeta handles POST /api/elections/meta
// All fields are optional; only the fields present in the request are
// written. The singleton row is created on first write, so no separate
// provisioning step exists.
func (h *ElectionHandler) UpsertMeta(w http.ResponseWriter, r *http.Request) {
	var req models.UpsertMetaRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	startTime, err := parseISOTime(req.StartTime)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid start_time: must be an ISO-8601 timestamp")
		return
	}
	endTime, err := parseISOTime(req.EndTime)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid end_time: must be an ISO-8601 timestamp")
		return
	}

	// Ensure the singleton row exists. ON CONFLICT DO NOTHING makes the
	// first-write race harmless: two concurrent upserts still produce one
	// row.
	ensureName := models.DefaultElectionName
	if req.ElectionName != nil && *req.ElectionName != "" {
		ensureName = *req.ElectionName
	}

	_, err = h.db.Exec(`
		INSERT INTO election_meta (id, election_name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, models.MetaRowID, ensureName)

	if err != nil {
		slog.Error("failed to ensure election meta row", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update election metadata")
		return
	}

	// Apply only the fields present in the request. Omitted fields are left
	// untouched; last write wins per field.
	fields := []string{}
	values := []interface{}{}

	if req.ElectionName != nil && *req.ElectionName != "" {
		values = append(values, *req.ElectionName)
		fields = append(fields, fmt.Sprintf("election_name = $%d", len(values)))
	}
	if startTime != nil {
		values = append(values, *startTime)
		fields = append(fields, fmt.Sprintf("start_time = $%d", len(values)))
	}
	if endTime != nil {
		values = append(values, *endTime)
		fields = append(fields, fmt.Sprintf("end_time = $%d", len(values)))
	}

	if len(fields) == 0 {
		// Nothing to update is a successful no-op
		middleware.JSONResponse(w, http.StatusOK, models.UpsertMetaResponse{Success: true})
		return
	}

	values = append(values, models.MetaRowID)
	query := fmt.Sprintf(`
		UPDATE election_meta
		SET %s
		WHERE id = $%d
	`, strings.Join(fields, ", "), len(values))

	if _, err := h.db.Exec(query, values...); err != nil {
		slog.Error("failed to update election meta", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update election metadata")
		return
	}

	slog.Info("election metadata updated",
		"name_set", req.ElectionName != nil,
		"start_set", startTime != nil,
		"end_set", endTime != nil,
	)

	middleware.JSONResponse(w, http.StatusOK, models.UpsertMetaResponse{
		Success: true,
		Message: "Election metadata updated",
	})
}

// parseISOTime converts an optional ISO-8601 string to a UTC time.
// Accepts fractional seconds ("2025-12-25T15:47:15.000Z").
func parseISOTime(iso *string) (*time.Time, error) {
	if iso == nil || *iso == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *iso)
	if err != nil {
		return nil, err
	}
	utc := t.UTC()
	return &utc, nil
}

func formatStored(t sql.NullTime) *string {
	if !t.Valid {
		return nil
	}
	s := t.Time.UTC().Format(StoredTimeLayout)
	return &s
}

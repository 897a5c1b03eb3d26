// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/chain-ballot/models"
)

// ErrMetadataNotReady signals the polling ceiling was exhausted before the
// metadata store held the required fields.
var ErrMetadataNotReady = errors.New("election metadata not ready")

const (
	// DefaultAttempts bounds the polling loop; with DefaultDelay this caps
	// the worst-case wait at eight seconds.
	DefaultAttempts = 10
	DefaultDelay    = 800 * time.Millisecond
)

// MetaClient talks to the elections metadata API.
type MetaClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// ForceLoadMeta polling knobs.
	Attempts int
	Delay    time.Duration
}

func NewMetaClient(baseURL string) *MetaClient {
	return &MetaClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Attempts:   DefaultAttempts,
		Delay:      DefaultDelay,
	}
}

// GetMeta fetches the metadata singleton. An empty store is a success with
// blank fields, not an error.
func (c *MetaClient) GetMeta(ctx context.Context) (models.MetaResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/elections/meta", nil)
	if err != nil {
		return models.MetaResponse{}, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return models.MetaResponse{}, fmt.Errorf("meta fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.MetaResponse{}, fmt.Errorf("meta fetch failed: status %d", resp.StatusCode)
	}

	var meta models.MetaResponse
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return models.MetaResponse{}, fmt.Errorf("meta fetch failed: %w", err)
	}
	if !meta.Success {
		return models.MetaResponse{}, fmt.Errorf("meta fetch failed: server reported failure")
	}

	return meta, nil
}

// UpsertMeta pushes a partial metadata update. Fields left nil in the
// request are omitted from the JSON body and stay untouched on the server.
func (c *MetaClient) UpsertMeta(ctx context.Context, update models.UpsertMetaRequest) error {
	body, err := json.Marshal(update)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/elections/meta", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("meta upsert failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("meta upsert failed: status %d", resp.StatusCode)
	}

	var result models.UpsertMetaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("meta upsert failed: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("meta upsert failed: server reported failure")
	}

	return nil
}

// A RequireFunc decides whether a metadata response holds the fields the
// caller needs. Different pages need different fields.
type RequireFunc func(models.MetaResponse) bool

// RequireName is satisfied once the election has been named.
func RequireName(meta models.MetaResponse) bool {
	return meta.ElectionName != ""
}

// RequireEndTime is satisfied once the end timestamp has landed. The
// results view cannot render without it.
func RequireEndTime(meta models.MetaResponse) bool {
	return meta.EndTime != nil && *meta.EndTime != ""
}

// ForceLoadMeta polls GetMeta until require is satisfied, the attempt
// ceiling is reached, or ctx is cancelled. The metadata write it waits for
// is triggered by an asynchronous chain confirmation, so its timing
// relative to this call is unbounded; the ceiling turns an indefinite hang
// into ErrMetadataNotReady.
func (c *MetaClient) ForceLoadMeta(ctx context.Context, require RequireFunc) (models.MetaResponse, error) {
	attempts := c.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	delay := c.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return models.MetaResponse{}, ctx.Err()
			}
		}

		meta, err := c.GetMeta(ctx)
		if err != nil {
			// Transient fetch failures count against the ceiling like
			// not-yet-populated responses do.
			slog.Warn("meta poll attempt failed", "attempt", attempt+1, "error", err)
			continue
		}

		if require(meta) {
			return meta, nil
		}
	}

	return models.MetaResponse{}, ErrMetadataNotReady
}

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/service"
)

// ScanHandler triggers scans and serves the results of the latest one.
type ScanHandler struct {
	scans  *service.ScanService
	logger *slog.Logger
}

// NewScanHandler creates a ScanHandler.
func NewScanHandler(scans *service.ScanService, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{scans: scans, logger: logger}
}

// scanRequest is the optional JSON body for a scan trigger. An api_key set
// here is used for this scan only; otherwise the stored setting and then the
// configured key apply.
type scanRequest struct {
	EventType string `json:"event_type"`
	APIKey    string `json:"api_key"`
}

// scanResponse bundles a scan summary with its detected opportunities.
type scanResponse struct {
	Scan          domain.Scan          `json:"scan"`
	Opportunities []domain.Opportunity `json:"opportunities"`
}

// TriggerScan runs a full aggregation and detection pass synchronously and
// returns the completed scan with its opportunities.
// POST /api/scan
func (h *ScanHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	eventType, err := domain.ParseEventType(req.EventType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.scans.RunWithKey(r.Context(), eventType, req.APIKey)
	if err != nil {
		h.writeScanError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, scanResponse{
		Scan:          snap.Scan,
		Opportunities: snap.Opportunities,
	})
}

// writeScanError maps scan failures onto HTTP status codes.
func (h *ScanHandler) writeScanError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrScanRunning):
		writeError(w, http.StatusConflict, "a scan is already running")
	case errors.Is(err, domain.ErrMissingAPIKey):
		writeError(w, http.StatusBadRequest, "no odds API key configured")
	case errors.Is(err, domain.ErrInvalidAPIKey):
		writeError(w, http.StatusUnauthorized, "odds API key rejected by provider")
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "odds provider rate limit exceeded")
	default:
		h.logger.Error("scan failed", slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, "scan failed: "+err.Error())
	}
}

// ListScans returns recent persisted scan summaries.
// GET /api/scans
func (h *ScanHandler) ListScans(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 20, 100)
	scans, err := h.scans.RecentScans(r.Context(), limit)
	if err != nil {
		h.logger.Error("list scans failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list scans")
		return
	}
	if scans == nil {
		scans = []domain.Scan{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scans": scans,
		"count": len(scans),
	})
}

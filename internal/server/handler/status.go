package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/service"
)

// StatusHandler reports runtime state: mode, uptime and the latest scan.
type StatusHandler struct {
	scans     *service.ScanService
	mode      string
	startedAt time.Time
	logger    *slog.Logger
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(scans *service.ScanService, mode string, startedAt time.Time, logger *slog.Logger) *StatusHandler {
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}
	return &StatusHandler{
		scans:     scans,
		mode:      mode,
		startedAt: startedAt,
		logger:    logger,
	}
}

// GetStatus returns process metadata plus a summary of the most recent scan.
// Before the first scan, last_scan is null.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"mode":           h.mode,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"last_scan":      nil,
	}

	snap, err := h.scans.Latest()
	switch {
	case err == nil:
		resp["last_scan"] = snap.Scan
		if snap.Scan.RequestsRemaining >= 0 {
			resp["requests_remaining"] = snap.Scan.RequestsRemaining
		}
	case !errors.Is(err, domain.ErrNoScan):
		h.logger.Error("load snapshot failed", slog.String("error", err.Error()))
	}

	writeJSON(w, http.StatusOK, resp)
}

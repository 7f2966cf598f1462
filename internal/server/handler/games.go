package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/service"
)

// GamesHandler serves the raw games from the latest scan snapshot.
type GamesHandler struct {
	scans  *service.ScanService
	logger *slog.Logger
}

// NewGamesHandler creates a GamesHandler.
func NewGamesHandler(scans *service.ScanService, logger *slog.Logger) *GamesHandler {
	return &GamesHandler{scans: scans, logger: logger}
}

// ListGames returns every game fetched by the most recent scan, with its
// per-bookmaker quotes, optionally filtered via ?event_type=live|pregame.
// GET /api/games
func (h *GamesHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	eventType, err := domain.ParseEventType(r.URL.Query().Get("event_type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.scans.Latest()
	if err != nil {
		if errors.Is(err, domain.ErrNoScan) {
			writeError(w, http.StatusNotFound, "no scan has completed yet")
			return
		}
		h.logger.Error("load snapshot failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load games")
		return
	}

	now := time.Now().UTC()
	games := make([]domain.Game, 0, len(snap.Games))
	for _, g := range snap.Games {
		if eventType.Matches(g.CommenceTime, now) {
			games = append(games, g)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scan_id": snap.Scan.ID,
		"games":   games,
		"count":   len(games),
	})
}

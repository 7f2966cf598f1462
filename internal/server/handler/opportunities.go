package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/service"
)

// OpportunityHandler serves current and historical arbitrage opportunities.
type OpportunityHandler struct {
	scans  *service.ScanService
	logger *slog.Logger
}

// NewOpportunityHandler creates an OpportunityHandler.
func NewOpportunityHandler(scans *service.ScanService, logger *slog.Logger) *OpportunityHandler {
	return &OpportunityHandler{scans: scans, logger: logger}
}

// ListOpportunities returns the latest scan's opportunities, optionally
// re-sorted via ?sort=profit|sport|time and filtered via
// ?event_type=live|pregame.
// GET /api/opportunities
func (h *OpportunityHandler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	sort := domain.SortKey(r.URL.Query().Get("sort"))
	switch sort {
	case "", domain.SortByProfit, domain.SortBySport, domain.SortByTime:
	default:
		writeError(w, http.StatusBadRequest, "unknown sort (valid: profit, sport, time)")
		return
	}
	eventType, err := domain.ParseEventType(r.URL.Query().Get("event_type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	all, err := h.scans.Opportunities(sort)
	if err != nil {
		if errors.Is(err, domain.ErrNoScan) {
			writeError(w, http.StatusNotFound, "no scan has completed yet")
			return
		}
		h.logger.Error("list opportunities failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}

	opps := make([]domain.Opportunity, 0, len(all))
	for _, opp := range all {
		switch eventType {
		case domain.EventTypeLive:
			if !opp.Live {
				continue
			}
		case domain.EventTypePregame:
			if opp.Live {
				continue
			}
		}
		opps = append(opps, opp)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"opportunities": opps,
		"count":         len(opps),
	})
}

// History returns persisted opportunities from past scans, most recent first.
// GET /api/opportunities/history
func (h *OpportunityHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50, 500)
	opps, err := h.scans.History(r.Context(), limit)
	if err != nil {
		h.logger.Error("opportunity history failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if opps == nil {
		opps = []domain.Opportunity{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"opportunities": opps,
		"count":         len(opps),
	})
}

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/arbitrage"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/service"
)

// AllocationHandler computes stake splits for detected opportunities.
type AllocationHandler struct {
	scans  *service.ScanService
	logger *slog.Logger
}

// NewAllocationHandler creates an AllocationHandler.
func NewAllocationHandler(scans *service.ScanService, logger *slog.Logger) *AllocationHandler {
	return &AllocationHandler{scans: scans, logger: logger}
}

// allocationRequest identifies the odds pair to split a stake across: either
// an opportunity from the latest snapshot or an explicit pair of American
// prices. Stake is placed on the home side.
type allocationRequest struct {
	OpportunityID string  `json:"opportunity_id"`
	HomePrice     int     `json:"home_price"`
	AwayPrice     int     `json:"away_price"`
	Stake         float64 `json:"stake"`
}

// Allocate computes the risk-free stake split for one opportunity or for an
// ad hoc price pair.
// POST /api/allocations
func (h *AllocationHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	var req allocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		alloc domain.Allocation
		err   error
	)
	switch {
	case req.OpportunityID != "":
		alloc, err = h.scans.Allocate(req.OpportunityID, req.Stake)
	case req.HomePrice != 0 || req.AwayPrice != 0:
		alloc, err = arbitrage.Allocate(domain.Opportunity{
			HomePrice: req.HomePrice,
			AwayPrice: req.AwayPrice,
		}, req.Stake)
	default:
		writeError(w, http.StatusBadRequest, "opportunity_id or a home_price/away_price pair is required")
		return
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoScan):
			writeError(w, http.StatusNotFound, "no scan has completed yet")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "opportunity not found in the latest scan")
		case errors.Is(err, domain.ErrInvalidStake), errors.Is(err, domain.ErrInvalidOdds):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.logger.Error("allocation failed", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "allocation failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, roundAllocation(alloc))
}

// roundAllocation rounds currency amounts and ROI to cents for the response.
// The underlying math stays full precision.
func roundAllocation(a domain.Allocation) domain.Allocation {
	a.HomeStake = round2(a.HomeStake)
	a.HomePayout = round2(a.HomePayout)
	a.AwayStake = round2(a.AwayStake)
	a.AwayPayout = round2(a.AwayPayout)
	a.TotalStake = round2(a.TotalStake)
	a.GuaranteedPayout = round2(a.GuaranteedPayout)
	a.GuaranteedProfit = round2(a.GuaranteedProfit)
	a.ROIPct = round2(a.ROIPct)
	return a
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

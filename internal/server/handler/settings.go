package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/service"
)

// SettingsHandler reads and writes host-application settings.
type SettingsHandler struct {
	settings *service.SettingsService
	logger   *slog.Logger
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(settings *service.SettingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

// GetSetting returns the stored value for a settings key. Secrets come back
// masked.
// GET /api/settings/{key}
func (h *SettingsHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := pathParam(r, "key")
	value, err := h.settings.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "setting not found")
			return
		}
		h.logger.Error("get setting failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load setting")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"key":   key,
		"value": value,
	})
}

// settingRequest is the JSON body for a settings update.
type settingRequest struct {
	Value string `json:"value"`
}

// PutSetting validates and persists a settings value.
// PUT /api/settings/{key}
func (h *SettingsHandler) PutSetting(w http.ResponseWriter, r *http.Request) {
	key := pathParam(r, "key")

	var req settingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.settings.Set(r.Context(), key, req.Value); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "unknown setting key")
		case errors.Is(err, domain.ErrMissingAPIKey):
			writeError(w, http.StatusBadRequest, "value must not be empty")
		default:
			// Validation failures carry their own message.
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"key":    key,
		"status": "updated",
	})
}

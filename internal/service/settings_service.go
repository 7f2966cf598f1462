package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
)

// SettingsService validates and persists host-application settings. The
// provider API key is write-mostly: reads return a masked form so the key
// never leaves the backend.
type SettingsService struct {
	store  domain.SettingsStore
	logger *slog.Logger
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(store domain.SettingsStore, logger *slog.Logger) *SettingsService {
	return &SettingsService{
		store:  store,
		logger: logger.With(slog.String("component", "settings_service")),
	}
}

// knownKeys enumerates the settings the API accepts.
var knownKeys = map[string]bool{
	domain.SettingOddsAPIKey:       true,
	domain.SettingDefaultEventType: true,
	domain.SettingDefaultSort:      true,
}

// Get returns the value for a settings key. The provider API key is masked.
// Unknown keys and absent values return domain.ErrNotFound.
func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	if !knownKeys[key] {
		return "", fmt.Errorf("settings_service: unknown key %s: %w", key, domain.ErrNotFound)
	}
	value, err := s.store.Load(ctx, key)
	if err != nil {
		return "", err
	}
	if key == domain.SettingOddsAPIKey {
		return maskSecret(value), nil
	}
	return value, nil
}

// Set validates and persists a settings key.
func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	if !knownKeys[key] {
		return fmt.Errorf("settings_service: unknown key %s: %w", key, domain.ErrNotFound)
	}

	value = strings.TrimSpace(value)
	switch key {
	case domain.SettingOddsAPIKey:
		if value == "" {
			return fmt.Errorf("settings_service: %w", domain.ErrMissingAPIKey)
		}
	case domain.SettingDefaultEventType:
		if _, err := domain.ParseEventType(value); err != nil {
			return fmt.Errorf("settings_service: %w", err)
		}
	case domain.SettingDefaultSort:
		switch domain.SortKey(value) {
		case domain.SortByProfit, domain.SortBySport, domain.SortByTime:
		default:
			return fmt.Errorf("settings_service: unknown sort %q (valid: profit, sport, time)", value)
		}
	}

	if err := s.store.Save(ctx, key, value); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "setting updated", slog.String("key", key))
	return nil
}

// maskSecret keeps the last four characters of a stored secret visible.
func maskSecret(v string) string {
	if len(v) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(v)-4) + v[len(v)-4:]
}

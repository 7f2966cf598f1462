package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
)

// OddsCache implements domain.OddsCache using Redis strings with
// JSON-serialized game slices.
//
// Key schema:
//
//	odds:{sportKey} - JSON array of games for one sport
type OddsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewOddsCache creates an OddsCache backed by the given Client. ttl bounds
// how stale a scan's odds may be; a zero ttl disables expiry.
func NewOddsCache(c *Client, ttl time.Duration) *OddsCache {
	return &OddsCache{rdb: c.Underlying(), ttl: ttl}
}

func oddsKey(sportKey string) string {
	return "odds:" + sportKey
}

// SetGames stores one sport's games with the configured TTL.
func (oc *OddsCache) SetGames(ctx context.Context, sportKey string, games []domain.Game) error {
	data, err := json.Marshal(games)
	if err != nil {
		return fmt.Errorf("redis: marshal odds %s: %w", sportKey, err)
	}
	if err := oc.rdb.Set(ctx, oddsKey(sportKey), data, oc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set odds %s: %w", sportKey, err)
	}
	return nil
}

// GetGames retrieves one sport's cached games.
// It returns domain.ErrNotFound when the key does not exist.
func (oc *OddsCache) GetGames(ctx context.Context, sportKey string) ([]domain.Game, error) {
	data, err := oc.rdb.Get(ctx, oddsKey(sportKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get odds %s: %w", sportKey, err)
	}

	var games []domain.Game
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, fmt.Errorf("redis: unmarshal odds %s: %w", sportKey, err)
	}
	return games, nil
}

// Invalidate removes one sport's cached games.
func (oc *OddsCache) Invalidate(ctx context.Context, sportKey string) error {
	if err := oc.rdb.Del(ctx, oddsKey(sportKey)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate odds %s: %w", sportKey, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.OddsCache = (*OddsCache)(nil)

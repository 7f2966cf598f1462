package domain

import (
	"context"
	"time"
)

// OddsCache holds per-sport odds payloads for a short TTL so back-to-back
// scans do not burn provider quota.
type OddsCache interface {
	SetGames(ctx context.Context, sportKey string, games []Game) error
	// GetGames returns ErrNotFound on a cache miss.
	GetGames(ctx context.Context, sportKey string) ([]Game, error)
	Invalidate(ctx context.Context, sportKey string) error
}

// RateLimiter provides distributed rate limiting. The aggregator uses it as
// its pacing policy toward the odds provider; the HTTP server uses it per
// client IP.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	// Wait blocks until a request for key is allowed under limit/window, or
	// the context is cancelled.
	Wait(ctx context.Context, key string, limit int, window time.Duration) error
}

// LockManager provides distributed mutual exclusion. A scan holds the "scan"
// lock so overlapping triggers cannot double-spend provider quota.
type LockManager interface {
	// Acquire returns an unlock function, or ErrLockHeld when another
	// holder owns the lock.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// StreamMessage is a single entry from a durable stream.
type StreamMessage struct {
	ID      string
	Payload []byte
}

// SignalBus provides pub/sub fan-out (scan status, fresh opportunities) and
// durable streams (scan summary trail).
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	StreamAppend(ctx context.Context, stream string, payload []byte) error
	StreamRead(ctx context.Context, stream string, lastID string, count int) ([]StreamMessage, error)
}

package services

import (
	"context"
	"time"

	"github.com/you/voicegate/domain"
	"github.com/you/voicegate/internal/infrastructure/database"
)

// RedisLoginThrottle implements domain.LoginThrottle with a per-email
// failure counter in a rolling window.
type RedisLoginThrottle struct {
	client      *database.RedisClient
	prefix      string
	maxAttempts int
	window      time.Duration
}

// NewLoginThrottle creates a new login throttle
func NewLoginThrottle(client *database.RedisClient, maxAttempts int, window time.Duration) domain.LoginThrottle {
	return &RedisLoginThrottle{
		client:      client,
		prefix:      "loginfail:",
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Allow implements domain.LoginThrottle
func (t *RedisLoginThrottle) Allow(ctx context.Context, email string) (bool, error) {
	count, err := t.client.Get(ctx, t.prefix+email).Int()
	if err != nil {
		// Missing key means no recorded failures.
		return true, nil
	}
	return count < t.maxAttempts, nil
}

// RecordFailure implements domain.LoginThrottle. The window starts at the
// first failure and is not extended by later ones.
func (t *RedisLoginThrottle) RecordFailure(ctx context.Context, email string) error {
	key := t.prefix + email
	if _, err := database.SetNX(ctx, t.client, key, 0, t.window); err != nil {
		return err
	}
	return t.client.Incr(ctx, key).Err()
}

// Reset implements domain.LoginThrottle
func (t *RedisLoginThrottle) Reset(ctx context.Context, email string) error {
	return t.client.Del(ctx, t.prefix+email).Err()
}

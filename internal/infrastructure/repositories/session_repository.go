package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/you/voicegate/domain"
)

// SessionRepositoryImpl implements domain.SessionRepository using Redis.
//
// Two keys per session:
//
//	session:<id>        JSON session document
//	refreshidx:<hash>   session id, the lookup index for a presented
//	                    refresh token
//
// Both carry a TTL equal to the session's remaining lifetime, so expired
// records purge themselves at the store level.
type SessionRepositoryImpl struct {
	client        *redis.Client
	sessionPrefix string
	refreshPrefix string
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(client *redis.Client) domain.SessionRepository {
	return &SessionRepositoryImpl{
		client:        client,
		sessionPrefix: "session:",
		refreshPrefix: "refreshidx:",
	}
}

func (r *SessionRepositoryImpl) sessionKey(id string) string { return r.sessionPrefix + id }
func (r *SessionRepositoryImpl) refreshKey(h string) string  { return r.refreshPrefix + h }

// Create implements domain.SessionRepository
func (r *SessionRepositoryImpl) Create(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return domain.ErrSessionExpired
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.sessionKey(session.ID), data, ttl)
	pipe.Set(ctx, r.refreshKey(session.RefreshTokenHash), session.ID, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// FindByID implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// FindByRefreshHash implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindByRefreshHash(ctx context.Context, hash string) (*domain.Session, error) {
	sessionID, err := r.client.Get(ctx, r.refreshKey(hash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, sessionID)
}

// Rotate implements domain.SessionRepository. The previous refresh hash is
// claimed with GETDEL: under concurrent refresh attempts exactly one caller
// observes the old index and wins, every other caller gets
// ErrSessionNotFound and fails closed.
func (r *SessionRepositoryImpl) Rotate(ctx context.Context, session *domain.Session, previousHash string) error {
	claimed, err := r.client.GetDel(ctx, r.refreshKey(previousHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ErrSessionNotFound
		}
		return err
	}
	if claimed != session.ID {
		return domain.ErrSessionNotFound
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return domain.ErrSessionExpired
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.sessionKey(session.ID), data, ttl)
	pipe.Set(ctx, r.refreshKey(session.RefreshTokenHash), session.ID, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Revoke implements domain.SessionRepository. Idempotent: revoking a
// missing or already-revoked session is a no-op. The session document is
// kept (with its remaining TTL) so lookups by id keep seeing the
// revocation marker until natural expiry; the refresh index is dropped
// immediately.
func (r *SessionRepositoryImpl) Revoke(ctx context.Context, sessionID string) error {
	session, err := r.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	if session.Revoked() {
		return nil
	}

	now := time.Now().UTC()
	session.RevokedAt = &now

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.sessionKey(session.ID), data, redis.KeepTTL)
	pipe.Del(ctx, r.refreshKey(session.RefreshTokenHash))
	_, err = pipe.Exec(ctx)
	return err
}

// Touch implements domain.SessionRepository. Rewrites the document in
// place without extending its lifetime.
func (r *SessionRepositoryImpl) Touch(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return r.client.Set(ctx, r.sessionKey(session.ID), data, redis.KeepTTL).Err()
}

// PurgeOrphans implements domain.SessionRepository. Redis TTLs do the real
// expiry work; this sweep only drops refresh-index entries whose session
// document disappeared first (revocation leaves none, but a crash between
// pipeline steps can).
func (r *SessionRepositoryImpl) PurgeOrphans(ctx context.Context) (int, error) {
	var purged int
	iter := r.client.Scan(ctx, 0, r.refreshPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		sessionID, err := r.client.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		exists, err := r.client.Exists(ctx, r.sessionKey(sessionID)).Result()
		if err != nil {
			continue
		}
		if exists == 0 {
			if err := r.client.Del(ctx, key).Err(); err == nil {
				purged++
			}
		}
	}
	return purged, iter.Err()
}

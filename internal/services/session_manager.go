package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/you/voicegate/domain"
	authinfra "github.com/you/voicegate/internal/infrastructure/auth"
)

// SessionManagerImpl implements domain.SessionManager. Sessions move
// ACTIVE -> (rotate) -> ACTIVE -> (revoke | expire) -> DEAD; DEAD is
// terminal.
type SessionManagerImpl struct {
	sessions   domain.SessionRepository
	tokens     domain.TokenService
	refreshTTL time.Duration
}

// NewSessionManager creates a new session manager
func NewSessionManager(sessions domain.SessionRepository, tokens domain.TokenService, refreshTTL time.Duration) domain.SessionManager {
	return &SessionManagerImpl{
		sessions:   sessions,
		tokens:     tokens,
		refreshTTL: refreshTTL,
	}
}

// generateRefreshToken returns a high-entropy opaque token. The raw value
// leaves this package exactly once, in the create/rotate return path.
func generateRefreshToken() (string, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashRefreshToken(token string) string {
	return authinfra.HashToken(token)
}

// CreateSession implements domain.SessionManager
func (m *SessionManagerImpl) CreateSession(ctx context.Context, user *domain.User, device domain.DeviceContext) (*domain.Session, string, string, error) {
	refreshToken, err := generateRefreshToken()
	if err != nil {
		return nil, "", "", err
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:               uuid.NewString(),
		UserID:           user.ID,
		RefreshTokenHash: hashRefreshToken(refreshToken),
		UserAgentHash:    authinfra.HashFingerprint(authinfra.NormalizeUserAgent(device.UserAgent)),
		IPHash:           authinfra.HashFingerprint(authinfra.NormalizeIP(device.IPAddress)),
		ExpiresAt:        now.Add(m.refreshTTL),
		LastUsedAt:       now,
		CreatedAt:        now,
	}

	if err := m.sessions.Create(ctx, session); err != nil {
		return nil, "", "", fmt.Errorf("failed to create session: %w", err)
	}

	accessToken, err := m.tokens.SignAccessToken(user, session.ID)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return session, accessToken, refreshToken, nil
}

// FindSessionByRefreshToken implements domain.SessionManager. Every
// failure path collapses into ErrSessionNotFound: unknown hash, revoked,
// expired, and fingerprint mismatch are indistinguishable to the caller so
// a probe learns nothing about which part of the credential was wrong.
func (m *SessionManagerImpl) FindSessionByRefreshToken(ctx context.Context, refreshToken string, device domain.DeviceContext) (*domain.Session, error) {
	if refreshToken == "" {
		return nil, domain.ErrSessionNotFound
	}

	session, err := m.sessions.FindByRefreshHash(ctx, hashRefreshToken(refreshToken))
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}

	if !session.Live(time.Now().UTC()) {
		return nil, domain.ErrSessionNotFound
	}

	uaHash := authinfra.HashFingerprint(authinfra.NormalizeUserAgent(device.UserAgent))
	if session.UserAgentHash != "" && uaHash != "" && !authinfra.FingerprintsEqual(session.UserAgentHash, uaHash) {
		return nil, domain.ErrSessionNotFound
	}

	ipHash := authinfra.HashFingerprint(authinfra.NormalizeIP(device.IPAddress))
	if session.IPHash != "" && ipHash != "" && !authinfra.FingerprintsEqual(session.IPHash, ipHash) {
		return nil, domain.ErrSessionNotFound
	}

	return session, nil
}

// RotateSession implements domain.SessionManager. The stored hash is
// overwritten atomically: the consumed refresh token is unusable from this
// point even if it leaked. Returns the new access and refresh tokens.
func (m *SessionManagerImpl) RotateSession(ctx context.Context, session *domain.Session, user *domain.User, device domain.DeviceContext) (string, string, error) {
	refreshToken, err := generateRefreshToken()
	if err != nil {
		return "", "", err
	}

	previousHash := session.RefreshTokenHash
	now := time.Now().UTC()

	session.RefreshTokenHash = hashRefreshToken(refreshToken)
	session.ExpiresAt = now.Add(m.refreshTTL)
	session.LastUsedAt = now

	if uaHash := authinfra.HashFingerprint(authinfra.NormalizeUserAgent(device.UserAgent)); uaHash != "" {
		session.UserAgentHash = uaHash
	}
	if ipHash := authinfra.HashFingerprint(authinfra.NormalizeIP(device.IPAddress)); ipHash != "" {
		session.IPHash = ipHash
	}

	if err := m.sessions.Rotate(ctx, session, previousHash); err != nil {
		return "", "", err
	}

	accessToken, err := m.tokens.SignAccessToken(user, session.ID)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// RevokeSession implements domain.SessionManager. Idempotent.
func (m *SessionManagerImpl) RevokeSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return m.sessions.Revoke(ctx, sessionID)
}

// TouchSession implements domain.SessionManager. Best-effort: persistence
// failures are swallowed, a missed last-used update must never fail the
// request that triggered it.
func (m *SessionManagerImpl) TouchSession(ctx context.Context, session *domain.Session, device domain.DeviceContext) {
	session.LastUsedAt = time.Now().UTC()
	if uaHash := authinfra.HashFingerprint(authinfra.NormalizeUserAgent(device.UserAgent)); uaHash != "" {
		session.UserAgentHash = uaHash
	}
	if ipHash := authinfra.HashFingerprint(authinfra.NormalizeIP(device.IPAddress)); ipHash != "" {
		session.IPHash = ipHash
	}
	_ = m.sessions.Touch(ctx, session)
}

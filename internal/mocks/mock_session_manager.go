package mocks

import (
	"context"

	"github.com/you/voicegate/domain"
)

// MockSessionManager implements domain.SessionManager interface for testing
type MockSessionManager struct {
	CreateSessionFunc             func(ctx context.Context, user *domain.User, device domain.DeviceContext) (*domain.Session, string, string, error)
	FindSessionByRefreshTokenFunc func(ctx context.Context, refreshToken string, device domain.DeviceContext) (*domain.Session, error)
	RotateSessionFunc             func(ctx context.Context, session *domain.Session, user *domain.User, device domain.DeviceContext) (string, string, error)
	RevokeSessionFunc             func(ctx context.Context, sessionID string) error
	TouchSessionFunc              func(ctx context.Context, session *domain.Session, device domain.DeviceContext)
}

// NewMockSessionManager creates a new MockSessionManager with default behaviors
func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{}
}

func (m *MockSessionManager) CreateSession(ctx context.Context, user *domain.User, device domain.DeviceContext) (*domain.Session, string, string, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, user, device)
	}
	return &domain.Session{ID: "mock-session", UserID: user.ID}, "mock-access", "mock-refresh", nil
}

func (m *MockSessionManager) FindSessionByRefreshToken(ctx context.Context, refreshToken string, device domain.DeviceContext) (*domain.Session, error) {
	if m.FindSessionByRefreshTokenFunc != nil {
		return m.FindSessionByRefreshTokenFunc(ctx, refreshToken, device)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionManager) RotateSession(ctx context.Context, session *domain.Session, user *domain.User, device domain.DeviceContext) (string, string, error) {
	if m.RotateSessionFunc != nil {
		return m.RotateSessionFunc(ctx, session, user, device)
	}
	return "mock-access-2", "mock-refresh-2", nil
}

func (m *MockSessionManager) RevokeSession(ctx context.Context, sessionID string) error {
	if m.RevokeSessionFunc != nil {
		return m.RevokeSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockSessionManager) TouchSession(ctx context.Context, session *domain.Session, device domain.DeviceContext) {
	if m.TouchSessionFunc != nil {
		m.TouchSessionFunc(ctx, session, device)
	}
}

// Compile-time interface compliance verification
var _ domain.SessionManager = (*MockSessionManager)(nil)

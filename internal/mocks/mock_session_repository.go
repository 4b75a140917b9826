package mocks

import (
	"context"

	"github.com/you/voicegate/domain"
)

// MockSessionRepository implements domain.SessionRepository interface for testing
type MockSessionRepository struct {
	CreateFunc            func(ctx context.Context, session *domain.Session) error
	FindByIDFunc          func(ctx context.Context, sessionID string) (*domain.Session, error)
	FindByRefreshHashFunc func(ctx context.Context, hash string) (*domain.Session, error)
	RotateFunc            func(ctx context.Context, session *domain.Session, previousHash string) error
	RevokeFunc            func(ctx context.Context, sessionID string) error
	TouchFunc             func(ctx context.Context, session *domain.Session) error
	PurgeOrphansFunc      func(ctx context.Context) (int, error)
}

// NewMockSessionRepository creates a new MockSessionRepository with default behaviors
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{}
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	return nil
}

func (m *MockSessionRepository) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, sessionID)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionRepository) FindByRefreshHash(ctx context.Context, hash string) (*domain.Session, error) {
	if m.FindByRefreshHashFunc != nil {
		return m.FindByRefreshHashFunc(ctx, hash)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionRepository) Rotate(ctx context.Context, session *domain.Session, previousHash string) error {
	if m.RotateFunc != nil {
		return m.RotateFunc(ctx, session, previousHash)
	}
	return nil
}

func (m *MockSessionRepository) Revoke(ctx context.Context, sessionID string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockSessionRepository) Touch(ctx context.Context, session *domain.Session) error {
	if m.TouchFunc != nil {
		return m.TouchFunc(ctx, session)
	}
	return nil
}

func (m *MockSessionRepository) PurgeOrphans(ctx context.Context) (int, error) {
	if m.PurgeOrphansFunc != nil {
		return m.PurgeOrphansFunc(ctx)
	}
	return 0, nil
}

// Compile-time interface compliance verification
var _ domain.SessionRepository = (*MockSessionRepository)(nil)

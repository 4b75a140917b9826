package mocks

import (
	"github.com/you/voicegate/domain"
)

// MockTokenService implements domain.TokenService interface for testing
type MockTokenService struct {
	SignAccessTokenFunc   func(user *domain.User, sessionID string) (string, error)
	VerifyAccessTokenFunc func(token string) (*domain.AccessClaims, error)
	AccessTTLSecondsFunc  func() int64
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

func (m *MockTokenService) SignAccessToken(user *domain.User, sessionID string) (string, error) {
	if m.SignAccessTokenFunc != nil {
		return m.SignAccessTokenFunc(user, sessionID)
	}
	return "mock-token", nil
}

func (m *MockTokenService) VerifyAccessToken(token string) (*domain.AccessClaims, error) {
	if m.VerifyAccessTokenFunc != nil {
		return m.VerifyAccessTokenFunc(token)
	}
	return nil, domain.ErrTokenInvalid
}

func (m *MockTokenService) AccessTTLSeconds() int64 {
	if m.AccessTTLSecondsFunc != nil {
		return m.AccessTTLSecondsFunc()
	}
	return 1800
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)

package mocks

import (
	"context"

	"github.com/you/voicegate/domain"
)

// MockLoginThrottle implements domain.LoginThrottle interface for testing
type MockLoginThrottle struct {
	AllowFunc         func(ctx context.Context, email string) (bool, error)
	RecordFailureFunc func(ctx context.Context, email string) error
	ResetFunc         func(ctx context.Context, email string) error
}

// NewMockLoginThrottle creates a new MockLoginThrottle with default behaviors
func NewMockLoginThrottle() *MockLoginThrottle {
	return &MockLoginThrottle{}
}

func (m *MockLoginThrottle) Allow(ctx context.Context, email string) (bool, error) {
	if m.AllowFunc != nil {
		return m.AllowFunc(ctx, email)
	}
	return true, nil
}

func (m *MockLoginThrottle) RecordFailure(ctx context.Context, email string) error {
	if m.RecordFailureFunc != nil {
		return m.RecordFailureFunc(ctx, email)
	}
	return nil
}

func (m *MockLoginThrottle) Reset(ctx context.Context, email string) error {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, email)
	}
	return nil
}

var _ domain.LoginThrottle = (*MockLoginThrottle)(nil)

// MockAuditLogger implements domain.AuditLogger interface for testing
type MockAuditLogger struct {
	Events []*domain.AuditEvent
}

// NewMockAuditLogger creates a new MockAuditLogger
func NewMockAuditLogger() *MockAuditLogger {
	return &MockAuditLogger{}
}

func (m *MockAuditLogger) LogEvent(_ context.Context, event *domain.AuditEvent) {
	m.Events = append(m.Events, event)
}

var _ domain.AuditLogger = (*MockAuditLogger)(nil)

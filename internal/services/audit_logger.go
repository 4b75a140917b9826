package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/you/voicegate/domain"
)

// ZerologAuditLogger implements domain.AuditLogger on the process logger.
// Routine auth failures stay at info/warn; nothing here logs at error
// severity, that level is reserved for operational faults.
type ZerologAuditLogger struct {
	log zerolog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(log zerolog.Logger) domain.AuditLogger {
	return &ZerologAuditLogger{log: log.With().Str("component", "audit").Logger()}
}

// LogEvent implements domain.AuditLogger
func (l *ZerologAuditLogger) LogEvent(_ context.Context, event *domain.AuditEvent) {
	var ev *zerolog.Event
	if event.Success {
		ev = l.log.Info()
	} else {
		ev = l.log.Warn()
	}

	ev = ev.Str("event", string(event.EventType)).
		Time("at", event.Timestamp)
	if event.UserID != 0 {
		ev = ev.Uint("user_id", event.UserID)
	}
	if event.Email != "" {
		ev = ev.Str("email", event.Email)
	}
	if event.SessionID != "" {
		ev = ev.Str("session_id", event.SessionID)
	}
	if event.IPAddress != "" {
		ev = ev.Str("ip", event.IPAddress)
	}
	if event.ErrorMsg != "" {
		ev = ev.Str("reason", event.ErrorMsg)
	}
	ev.Msg("auth event")
}

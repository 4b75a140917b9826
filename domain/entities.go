package domain

import "time"

// Roles supported by the dashboard.
const (
	RoleAdmin    = "admin"
	RoleInbound  = "inbound"
	RoleOutbound = "outbound"
)

// Account statuses.
const (
	StatusActive          = "active"
	StatusSuspended       = "suspended"
	StatusPendingApproval = "pending_approval"
)

// User represents a user in the system
type User struct {
	ID                 uint
	Email              string
	Name               string
	PasswordHash       string
	Role               string
	Status             string
	SubscriptionPlan   string
	SubscriptionExpiry *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AuthResult represents authentication outcome
type AuthResult struct {
	User         *User
	AccessToken  string
	RefreshToken string
	SessionID    string
	ExpiresIn    int64
}

// DeviceContext carries the request attributes a session is bound to.
// Values are raw; normalization and hashing happen in the session manager.
type DeviceContext struct {
	UserAgent string
	IPAddress string
}

// Session is the server-side record for one active login. The refresh
// token itself is never stored, only its hash; the same goes for both
// device fingerprint components.
type Session struct {
	ID               string     `json:"id"`
	UserID           uint       `json:"user_id"`
	RefreshTokenHash string     `json:"refresh_token_hash"`
	UserAgentHash    string     `json:"user_agent_hash,omitempty"`
	IPHash           string     `json:"ip_hash,omitempty"`
	ExpiresAt        time.Time  `json:"expires_at"`
	LastUsedAt       time.Time  `json:"last_used_at"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Revoked reports whether the session has been explicitly terminated.
// A revoked session is permanently dead.
func (s *Session) Revoked() bool {
	return s.RevokedAt != nil
}

// Expired reports whether the session passed its absolute expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Live reports whether the session may still authenticate requests.
func (s *Session) Live(now time.Time) bool {
	return !s.Revoked() && !s.Expired(now)
}

// Identity is the resolved caller attached to the request context by the
// auth middleware.
type Identity struct {
	UserID    uint
	Email     string
	Role      string
	Status    string
	SessionID string
}

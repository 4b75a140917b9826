package domain

import "context"

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdateStatus(ctx context.Context, userID uint, status string) error
	UpdateRole(ctx context.Context, userID uint, role string) error
	List(ctx context.Context, offset, limit int) ([]*User, int64, error)
}

// SessionRepository defines session data access operations. Each call
// touches a single record; the refresh-hash index is maintained alongside
// the session document.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID string) (*Session, error)
	FindByRefreshHash(ctx context.Context, hash string) (*Session, error)
	// Rotate atomically claims previousHash (first caller wins) and
	// persists the mutated session under its new refresh hash.
	Rotate(ctx context.Context, session *Session, previousHash string) error
	// Revoke marks the session dead. Revoking an already-revoked or
	// missing session is a no-op.
	Revoke(ctx context.Context, sessionID string) error
	// Touch persists last-used and fingerprint updates without extending
	// the session's lifetime. Best-effort.
	Touch(ctx context.Context, session *Session) error
	PurgeOrphans(ctx context.Context) (int, error)
}

// SessionManager drives the session lifecycle: creation, refresh-token
// lookup, rotation, and revocation.
type SessionManager interface {
	CreateSession(ctx context.Context, user *User, device DeviceContext) (*Session, string, string, error)
	FindSessionByRefreshToken(ctx context.Context, refreshToken string, device DeviceContext) (*Session, error)
	RotateSession(ctx context.Context, session *Session, user *User, device DeviceContext) (string, string, error)
	RevokeSession(ctx context.Context, sessionID string) error
	TouchSession(ctx context.Context, session *Session, device DeviceContext)
}

// AuthService defines authentication business logic
type AuthService interface {
	Signup(ctx context.Context, email, name, password string, device DeviceContext) (*AuthResult, error)
	Login(ctx context.Context, email, password string, device DeviceContext) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string, device DeviceContext) (*AuthResult, error)
	Logout(ctx context.Context, sessionID, refreshToken string, device DeviceContext) error
	GetUserProfile(ctx context.Context, userID uint) (*User, error)
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines access-token operations
type TokenService interface {
	SignAccessToken(user *User, sessionID string) (string, error)
	VerifyAccessToken(token string) (*AccessClaims, error)
	AccessTTLSeconds() int64
}

// AccessClaims are the verified contents of an access token.
type AccessClaims struct {
	UserID    uint
	Email     string
	Role      string
	SessionID string
	IssuedAt  int64
	ExpiresAt int64
}

// LoginThrottle bounds consecutive failed login attempts per account.
type LoginThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

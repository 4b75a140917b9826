package domain

import "errors"

// Credential errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAccountSuspended   = errors.New("account is suspended")
	ErrAccountPending     = errors.New("account is pending approval")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// Token errors
var (
	ErrMissingCredential = errors.New("missing credential")
	ErrTokenInvalid      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token has expired")
	ErrTokenMalformed    = errors.New("malformed token")
	ErrInvalidUser       = errors.New("token subject no longer exists")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")
	ErrSessionRevoked  = errors.New("session has been revoked")
	ErrSessionMismatch = errors.New("session device mismatch")
)

// Authorization errors
var (
	ErrForbidden = errors.New("forbidden")
)

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/you/voicegate/domain"
)

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	userRepo    domain.UserRepository
	sessionMgr  domain.SessionManager
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	throttle    domain.LoginThrottle
	audit       domain.AuditLogger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	sessionMgr domain.SessionManager,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	throttle domain.LoginThrottle,
	audit domain.AuditLogger,
) domain.AuthService {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		sessionMgr:  sessionMgr,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		throttle:    throttle,
		audit:       audit,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup implements domain.AuthService
func (s *AuthServiceImpl) Signup(ctx context.Context, email, name, password string, device domain.DeviceContext) (*domain.AuthResult, error) {
	email = normalizeEmail(email)

	if existing, err := s.userRepo.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hashedPassword, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashedPassword,
		Role:         domain.RoleOutbound,
		Status:       domain.StatusActive,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	result, err := s.issueSession(ctx, user, device)
	if err != nil {
		return nil, err
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserSignupEvent, user.ID).
		WithEmail(user.Email).WithSession(result.SessionID).WithDevice(device))
	return result, nil
}

// Login implements domain.AuthService. Unknown email and wrong password
// produce the same error; account-status failures are only reported after
// the password verified, so a suspension response never confirms a guess.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string, device domain.DeviceContext) (*domain.AuthResult, error) {
	email = normalizeEmail(email)

	allowed, err := s.throttle.Allow(ctx, email)
	if err == nil && !allowed {
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		_ = s.throttle.RecordFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	if !s.passwordSvc.Verify(user.PasswordHash, password) {
		_ = s.throttle.RecordFailure(ctx, email)
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginFailureEvent, user.ID).
			WithEmail(email).WithDevice(device).WithError(domain.ErrInvalidCredentials))
		return nil, domain.ErrInvalidCredentials
	}

	switch user.Status {
	case domain.StatusSuspended:
		return nil, domain.ErrAccountSuspended
	case domain.StatusPendingApproval:
		return nil, domain.ErrAccountPending
	}

	_ = s.throttle.Reset(ctx, email)

	result, err := s.issueSession(ctx, user, device)
	if err != nil {
		return nil, err
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginEvent, user.ID).
		WithEmail(user.Email).WithSession(result.SessionID).WithDevice(device))
	return result, nil
}

// Refresh implements domain.AuthService. Looks the session up by the
// presented refresh token, rotates it, and re-signs an access token. A
// session whose owner vanished is revoked on the spot.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string, device domain.DeviceContext) (*domain.AuthResult, error) {
	session, err := s.sessionMgr.FindSessionByRefreshToken(ctx, refreshToken, device)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		_ = s.sessionMgr.RevokeSession(ctx, session.ID)
		return nil, domain.ErrSessionNotFound
	}

	accessToken, rotatedRefreshToken, err := s.sessionMgr.RotateSession(ctx, session, user, device)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.SessionRotatedEvent, user.ID).
		WithEmail(user.Email).WithSession(session.ID).WithDevice(device))

	return &domain.AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: rotatedRefreshToken,
		SessionID:    session.ID,
		ExpiresIn:    s.tokenSvc.AccessTTLSeconds(),
	}, nil
}

// Logout implements domain.AuthService. Revokes whatever session can be
// resolved and reports success either way: client-side logout must never
// block on server state it cannot control.
func (s *AuthServiceImpl) Logout(ctx context.Context, sessionID, refreshToken string, device domain.DeviceContext) error {
	if sessionID == "" && refreshToken != "" {
		if session, err := s.sessionMgr.FindSessionByRefreshToken(ctx, refreshToken, device); err == nil {
			sessionID = session.ID
		}
	}
	if sessionID == "" {
		return nil
	}

	if err := s.sessionMgr.RevokeSession(ctx, sessionID); err != nil {
		return err
	}
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLogoutEvent, 0).
		WithSession(sessionID).WithDevice(device))
	return nil
}

// GetUserProfile implements domain.AuthService
func (s *AuthServiceImpl) GetUserProfile(ctx context.Context, userID uint) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *AuthServiceImpl) issueSession(ctx context.Context, user *domain.User, device domain.DeviceContext) (*domain.AuthResult, error) {
	session, accessToken, refreshToken, err := s.sessionMgr.CreateSession(ctx, user, device)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &domain.AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    session.ID,
		ExpiresIn:    s.tokenSvc.AccessTTLSeconds(),
	}, nil
}

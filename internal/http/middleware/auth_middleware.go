package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/you/voicegate/domain"
	"github.com/you/voicegate/internal/config"
	authinfra "github.com/you/voicegate/internal/infrastructure/auth"
)

// Context keys set by the auth middleware.
const (
	CtxIdentity  = "identity"
	CtxUserID    = "user_id"
	CtxUserRole  = "user_role"
	CtxSessionID = "session_id"
)

// AuthMW resolves a caller's identity from a bearer token or session
// cookie and gates requests on session liveness and account status.
type AuthMW struct {
	tokenSvc          domain.TokenService
	userRepo          domain.UserRepository
	sessionRepo       domain.SessionRepository
	sessionMgr        domain.SessionManager
	audit             domain.AuditLogger
	sessionCookieName string
	validationMode    string
}

// NewAuthMW creates new auth middleware
func NewAuthMW(
	tokenSvc domain.TokenService,
	userRepo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	sessionMgr domain.SessionManager,
	audit domain.AuditLogger,
	sessionCookieName string,
	validationMode string,
) *AuthMW {
	return &AuthMW{
		tokenSvc:          tokenSvc,
		userRepo:          userRepo,
		sessionRepo:       sessionRepo,
		sessionMgr:        sessionMgr,
		audit:             audit,
		sessionCookieName: sessionCookieName,
		validationMode:    validationMode,
	}
}

// RequireAuth returns the authenticating middleware. Resolution failures
// abort the request with the mapped status.
func (mw *AuthMW) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := mw.resolve(c)
		if err != nil {
			abortWithAuthError(c, err)
			return
		}
		setIdentity(c, identity)
		c.Next()
	}
}

// OptionalAuth resolves identity when possible but never fails the
// request: any error simply leaves the caller anonymous.
func (mw *AuthMW) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, err := mw.resolve(c); err == nil {
			setIdentity(c, identity)
		}
		c.Next()
	}
}

// RequireRole rejects callers whose resolved role is not in the set.
// Deliberately decoupled from authentication.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing credentials"})
			return
		}
		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}
		abortWithAuthError(c, domain.ErrForbidden)
	}
}

// resolve walks the authentication steps in order, short-circuiting on the
// first failure.
func (mw *AuthMW) resolve(c *gin.Context) (*domain.Identity, error) {
	token := mw.extractToken(c)
	if token == "" {
		return nil, domain.ErrMissingCredential
	}

	claims, err := mw.tokenSvc.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	user, err := mw.userRepo.FindByID(c.Request.Context(), claims.UserID)
	if err != nil {
		return nil, domain.ErrInvalidUser
	}

	device := deviceContext(c)

	// Token signature validity alone is not sufficient: the embedded
	// session must independently resolve to a live record.
	if claims.SessionID != "" {
		session, err := mw.sessionRepo.FindByID(c.Request.Context(), claims.SessionID)
		if err != nil {
			return nil, domain.ErrSessionExpired
		}
		if session.Revoked() {
			return nil, domain.ErrSessionRevoked
		}
		if !session.Live(time.Now().UTC()) {
			return nil, domain.ErrSessionExpired
		}
		if session.UserID != claims.UserID {
			return nil, domain.ErrSessionExpired
		}

		if mw.validationMode == config.ValidationStrict {
			if err := mw.checkFingerprints(c, session, user, device); err != nil {
				return nil, err
			}
		}

		mw.sessionMgr.TouchSession(c.Request.Context(), session, device)
	}

	switch user.Status {
	case domain.StatusSuspended:
		return nil, domain.ErrAccountSuspended
	case domain.StatusPendingApproval:
		return nil, domain.ErrAccountPending
	}

	return &domain.Identity{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		Status:    user.Status,
		SessionID: claims.SessionID,
	}, nil
}

// checkFingerprints re-validates the device binding. A mismatch burns the
// session: a token+cookie pair presented from a different device is
// treated as stolen.
func (mw *AuthMW) checkFingerprints(c *gin.Context, session *domain.Session, user *domain.User, device domain.DeviceContext) error {
	uaHash := authinfra.HashFingerprint(authinfra.NormalizeUserAgent(device.UserAgent))
	ipHash := authinfra.HashFingerprint(authinfra.NormalizeIP(device.IPAddress))

	uaMismatch := session.UserAgentHash != "" && uaHash != "" && !authinfra.FingerprintsEqual(session.UserAgentHash, uaHash)
	ipMismatch := session.IPHash != "" && ipHash != "" && !authinfra.FingerprintsEqual(session.IPHash, ipHash)

	if uaMismatch || ipMismatch {
		_ = mw.sessionMgr.RevokeSession(c.Request.Context(), session.ID)
		mw.audit.LogEvent(c.Request.Context(), domain.NewAuditEvent(domain.SessionMismatchEvent, user.ID).
			WithEmail(user.Email).WithSession(session.ID).WithDevice(device).
			WithError(domain.ErrSessionMismatch))
		return domain.ErrSessionMismatch
	}
	return nil
}

// extractToken prefers the Authorization header and falls back to the
// session cookie.
func (mw *AuthMW) extractToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if cookie, err := c.Cookie(mw.sessionCookieName); err == nil {
		return cookie
	}
	return ""
}

func deviceContext(c *gin.Context) domain.DeviceContext {
	return domain.DeviceContext{
		UserAgent: c.GetHeader("User-Agent"),
		IPAddress: c.ClientIP(),
	}
}

func setIdentity(c *gin.Context, identity *domain.Identity) {
	c.Set(CtxIdentity, identity)
	c.Set(CtxUserID, identity.UserID)
	c.Set(CtxUserRole, identity.Role)
	if identity.SessionID != "" {
		c.Set(CtxSessionID, identity.SessionID)
	}
}

// GetIdentity returns the identity attached by RequireAuth/OptionalAuth.
func GetIdentity(c *gin.Context) (*domain.Identity, bool) {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*domain.Identity)
	return identity, ok
}

func abortWithAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing credentials"})
	case errors.Is(err, domain.ErrTokenExpired):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
	case errors.Is(err, domain.ErrTokenInvalid), errors.Is(err, domain.ErrTokenMalformed):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
	case errors.Is(err, domain.ErrInvalidUser):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
	case errors.Is(err, domain.ErrSessionExpired), errors.Is(err, domain.ErrSessionRevoked), errors.Is(err, domain.ErrSessionNotFound):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session invalid or expired"})
	case errors.Is(err, domain.ErrSessionMismatch):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session device mismatch"})
	case errors.Is(err, domain.ErrAccountSuspended):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account is suspended"})
	case errors.Is(err, domain.ErrAccountPending):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account is pending approval"})
	case errors.Is(err, domain.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	default:
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
}

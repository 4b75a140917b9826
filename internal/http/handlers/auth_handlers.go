package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/voicegate/domain"
	"github.com/you/voicegate/internal/http/middleware"
)

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	authSvc domain.AuthService
	cookies CookiePolicy
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, cookies CookiePolicy) *AuthHandlers {
	return &AuthHandlers{
		authSvc: authSvc,
		cookies: cookies,
	}
}

// SignupRequest represents signup request
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the body fallback when the refresh cookie is absent.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func userResponse(user *domain.User) gin.H {
	return gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
	}
}

func deviceFromRequest(c *gin.Context) domain.DeviceContext {
	return domain.DeviceContext{
		UserAgent: c.GetHeader("User-Agent"),
		IPAddress: c.ClientIP(),
	}
}

// Signup handles user registration
func (h *AuthHandlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.Signup(c.Request.Context(), req.Email, req.Name, req.Password, deviceFromRequest(c))
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	h.cookies.SetAuthCookies(c, result.AccessToken, result.RefreshToken)
	c.JSON(http.StatusCreated, gin.H{"user": userResponse(result.User)})
}

// Login handles user login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password, deviceFromRequest(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			// Same message whether the email or the password was wrong.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		case errors.Is(err, domain.ErrAccountSuspended):
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is suspended"})
		case errors.Is(err, domain.ErrAccountPending):
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is pending approval"})
		case errors.Is(err, domain.ErrTooManyAttempts):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts, try again later"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}

	h.cookies.SetAuthCookies(c, result.AccessToken, result.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"user": userResponse(result.User)})
}

// Refresh handles refresh-token rotation. Reads the refresh cookie first,
// then the request body.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	refreshToken, _ := c.Cookie(h.cookies.RefreshName)
	if refreshToken == "" {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing refresh token"})
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), refreshToken, deviceFromRequest(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	h.cookies.SetAuthCookies(c, result.AccessToken, result.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"user": userResponse(result.User)})
}

// Logout revokes the resolved session if any, always clears cookies, and
// always succeeds. Runs behind OptionalAuth.
func (h *AuthHandlers) Logout(c *gin.Context) {
	var sessionID string
	if identity, ok := middleware.GetIdentity(c); ok {
		sessionID = identity.SessionID
	}
	refreshToken, _ := c.Cookie(h.cookies.RefreshName)

	_ = h.authSvc.Logout(c.Request.Context(), sessionID, refreshToken, deviceFromRequest(c))

	h.cookies.ClearAuthCookies(c)
	c.Status(http.StatusNoContent)
}

// Me returns the authenticated caller's profile
func (h *AuthHandlers) Me(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing credentials"})
		return
	}

	user, err := h.authSvc.GetUserProfile(c.Request.Context(), identity.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":     user.ID,
			"email":  user.Email,
			"name":   user.Name,
			"role":   user.Role,
			"status": user.Status,
		},
	})
}

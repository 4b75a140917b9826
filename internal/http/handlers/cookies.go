package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/you/voicegate/internal/config"
)

// CookiePolicy describes how auth cookies are issued. Both cookies are
// HTTP-only; the session cookie carries the signed access token and the
// refresh cookie the raw refresh token.
type CookiePolicy struct {
	SessionName   string
	RefreshName   string
	SameSite      http.SameSite
	Secure        bool
	Domain        string
	SessionMaxAge int
	RefreshMaxAge int
}

// NewCookiePolicy builds the policy from configuration.
func NewCookiePolicy(cfg *config.Config) CookiePolicy {
	return CookiePolicy{
		SessionName:   cfg.SessionCookieName,
		RefreshName:   cfg.RefreshCookieName,
		SameSite:      parseSameSite(cfg.SameSite),
		Secure:        cfg.SecureCookies,
		Domain:        cfg.CookieDomain,
		SessionMaxAge: int(cfg.AccessTTL / time.Second),
		RefreshMaxAge: int(cfg.RefreshTTL / time.Second),
	}
}

func parseSameSite(v string) http.SameSite {
	switch v {
	case "Strict", "strict":
		return http.SameSiteStrictMode
	case "Lax", "lax":
		return http.SameSiteLaxMode
	default:
		return http.SameSiteNoneMode
	}
}

// SetAuthCookies sets both cookies on the response.
func (p CookiePolicy) SetAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	c.SetSameSite(p.SameSite)
	c.SetCookie(p.SessionName, accessToken, p.SessionMaxAge, "/", p.Domain, p.Secure, true)
	c.SetCookie(p.RefreshName, refreshToken, p.RefreshMaxAge, "/", p.Domain, p.Secure, true)
}

// ClearAuthCookies expires both cookies.
func (p CookiePolicy) ClearAuthCookies(c *gin.Context) {
	c.SetSameSite(p.SameSite)
	c.SetCookie(p.SessionName, "", -1, "/", p.Domain, p.Secure, true)
	c.SetCookie(p.RefreshName, "", -1, "/", p.Domain, p.Secure, true)
}

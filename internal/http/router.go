package httpx

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/you/voicegate/domain"
	"github.com/you/voicegate/internal/http/handlers"
	"github.com/you/voicegate/internal/http/middleware"
)

func BuildRouter(ah *handlers.AuthHandlers, uh *handlers.AdminUserHandlers, authmw *middleware.AuthMW, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/signup", ah.Signup)
	auth.POST("/login", ah.Login)
	auth.POST("/refresh", ah.Refresh)
	auth.POST("/logout", authmw.OptionalAuth(), ah.Logout)
	auth.GET("/me", authmw.RequireAuth(), ah.Me)

	adm := r.Group("/admin").Use(authmw.RequireAuth(), middleware.RequireRole(domain.RoleAdmin))
	adm.GET("/users", uh.List)
	adm.POST("/users", uh.Create)
	adm.PATCH("/users/:id/status", uh.UpdateStatus)
	adm.PATCH("/users/:id/role", uh.UpdateRole)

	return r
}

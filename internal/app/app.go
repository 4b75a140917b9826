package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/you/voicegate/internal/config"
	httpx "github.com/you/voicegate/internal/http"
	"github.com/you/voicegate/internal/http/handlers"
	"github.com/you/voicegate/internal/http/middleware"
	"github.com/you/voicegate/internal/jobs"
)

func Run(cfg *config.Config, log zerolog.Logger) error {
	gin.SetMode(cfg.GinMode)

	c, err := NewContainer(cfg, log)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.RedisClient.Ping(context.Background()); err != nil {
		return err
	}

	sweeper := jobs.NewSweeper(c.SessionRepo, log)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()

	cookies := handlers.NewCookiePolicy(cfg)
	authH := handlers.NewAuthHandlers(c.AuthSvc, cookies)
	adminH := handlers.NewAdminUserHandlers(c.UserRepo, c.PasswordSvc)

	authMW := middleware.NewAuthMW(
		c.TokenSvc,
		c.UserRepo,
		c.SessionRepo,
		c.SessionMgr,
		c.Audit,
		cfg.SessionCookieName,
		cfg.ValidationMode,
	)

	r := httpx.BuildRouter(authH, adminH, authMW, log)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("mode", cfg.ValidationMode).Msg("listening")
	return http.ListenAndServe(addr, r)
}

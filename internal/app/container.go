package app

import (
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/you/voicegate/domain"
	"github.com/you/voicegate/internal/config"
	authinfra "github.com/you/voicegate/internal/infrastructure/auth"
	"github.com/you/voicegate/internal/infrastructure/database"
	"github.com/you/voicegate/internal/infrastructure/repositories"
	"github.com/you/voicegate/internal/services"
)

// Container holds all dependencies, constructed once at boot and injected
// downward; nothing here is ambient global state.
type Container struct {
	Config *config.Config
	Log    zerolog.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *database.RedisClient

	// Repositories
	UserRepo    domain.UserRepository
	SessionRepo domain.SessionRepository

	// Services
	PasswordSvc domain.PasswordService
	TokenSvc    domain.TokenService
	SessionMgr  domain.SessionManager
	Throttle    domain.LoginThrottle
	Audit       domain.AuditLogger
	AuthSvc     domain.AuthService
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Log: log}

	db, err := database.Open(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	c.DB = db

	c.RedisClient = database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	c.UserRepo = repositories.NewUserRepository(db)
	c.SessionRepo = repositories.NewSessionRepository(c.RedisClient.Client)

	c.PasswordSvc, err = authinfra.NewPasswordService(0)
	if err != nil {
		return nil, err
	}
	c.TokenSvc, err = authinfra.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL)
	if err != nil {
		return nil, err
	}

	c.SessionMgr = services.NewSessionManager(c.SessionRepo, c.TokenSvc, cfg.RefreshTTL)
	c.Throttle = services.NewLoginThrottle(c.RedisClient, cfg.LoginMaxAttempts, cfg.LoginWindow)
	c.Audit = services.NewAuditLogger(log)
	c.AuthSvc = services.NewAuthService(c.UserRepo, c.SessionMgr, c.PasswordSvc, c.TokenSvc, c.Throttle, c.Audit)

	return c, nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}

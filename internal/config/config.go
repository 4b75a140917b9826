package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Validation modes for the auth middleware's device fingerprint check.
const (
	ValidationStrict  = "strict"
	ValidationRelaxed = "relaxed"
)

type AppConfig struct {
	Port        int    `yaml:"port"`
	GinMode     string `yaml:"gin_mode"`
	Environment string `yaml:"environment"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	Issuer     string `yaml:"issuer"`
	AccessTTL  string `yaml:"access_ttl"`
	RefreshTTL string `yaml:"refresh_ttl"`
}

type AuthConfig struct {
	SessionCookieName string `yaml:"session_cookie_name"`
	RefreshCookieName string `yaml:"refresh_cookie_name"`
	SameSite          string `yaml:"same_site"`
	SecureCookies     *bool  `yaml:"secure_cookies"`
	CookieDomain      string `yaml:"cookie_domain"`
	ValidationMode    string `yaml:"validation_mode"`
	LoginMaxAttempts  int    `yaml:"login_max_attempts"`
	LoginWindow       string `yaml:"login_window"`
}

type ConfigFile struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Auth     AuthConfig     `yaml:"auth"`
}

type Config struct {
	Port        string
	GinMode     string
	Environment string

	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret  string
	JWTIssuer  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	SessionCookieName string
	RefreshCookieName string
	SameSite          string
	SecureCookies     bool
	CookieDomain      string
	ValidationMode    string
	LoginMaxAttempts  int
	LoginWindow       time.Duration
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads config/config.yml and applies environment overrides. The JWT
// signing secret is mandatory: an empty secret is a startup failure, never
// a degraded runtime state.
func Load() (*Config, error) {
	return LoadFrom("config/config.yml")
}

func LoadFrom(path string) (*Config, error) {
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	accTTL, err := time.ParseDuration(defaultStr(configFile.JWT.AccessTTL, "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}

	refTTL, err := time.ParseDuration(defaultStr(configFile.JWT.RefreshTTL, "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT refresh TTL: %w", err)
	}

	loginWindow, err := time.ParseDuration(defaultStr(configFile.Auth.LoginWindow, "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid login window: %w", err)
	}

	environment := env("APP_ENV", defaultStr(configFile.App.Environment, "development"))

	secret := env("JWT_SECRET", configFile.JWT.Secret)
	if secret == "" {
		return nil, fmt.Errorf("jwt signing secret is not configured (set JWT_SECRET or jwt.secret)")
	}

	mode := defaultStr(configFile.Auth.ValidationMode, defaultValidationMode(environment))
	if mode != ValidationStrict && mode != ValidationRelaxed {
		return nil, fmt.Errorf("invalid validation mode %q", mode)
	}

	secure := environment == "production"
	if configFile.Auth.SecureCookies != nil {
		secure = *configFile.Auth.SecureCookies
	}

	maxAttempts := configFile.Auth.LoginMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 10
	}

	return &Config{
		Port:              fmt.Sprintf("%d", configFile.App.Port),
		GinMode:           defaultStr(configFile.App.GinMode, "release"),
		Environment:       environment,
		DSN:               env("DATABASE_DSN", configFile.Database.DSN),
		RedisAddr:         env("REDIS_ADDR", configFile.Redis.Addr),
		RedisPassword:     env("REDIS_PASSWORD", configFile.Redis.Password),
		RedisDB:           configFile.Redis.DB,
		JWTSecret:         secret,
		JWTIssuer:         defaultStr(configFile.JWT.Issuer, "voicegate"),
		AccessTTL:         accTTL,
		RefreshTTL:        refTTL,
		SessionCookieName: defaultStr(configFile.Auth.SessionCookieName, "session"),
		RefreshCookieName: defaultStr(configFile.Auth.RefreshCookieName, "refresh_token"),
		SameSite:          defaultStr(configFile.Auth.SameSite, "None"),
		SecureCookies:     secure,
		CookieDomain:      configFile.Auth.CookieDomain,
		ValidationMode:    mode,
		LoginMaxAttempts:  maxAttempts,
		LoginWindow:       loginWindow,
	}, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func defaultStr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func defaultValidationMode(environment string) string {
	if environment == "production" {
		return ValidationStrict
	}
	return ValidationRelaxed
}

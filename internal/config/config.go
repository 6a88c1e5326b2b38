package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Logger   LoggerConfig   `yaml:"logger"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	CORS     CORSConfig     `yaml:"cors"`
	Redis    RedisConfig    `yaml:"redis"`
	Web      WebConfig      `yaml:"web"`
	Auth     AuthConfig     `yaml:"auth"`
	Seed     SeedConfig     `yaml:"seed"`
}

type AppConfig struct {
	Env     string `yaml:"env"`
	APIPort string `yaml:"api_port"`
	WebPort string `yaml:"web_port"`
}

type LoggerConfig struct {
	Level             string `yaml:"level"`
	Encoding          string `yaml:"encoding"`
	DisableCaller     bool   `yaml:"disable_caller"`
	DisableStacktrace bool   `yaml:"disable_stacktrace"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type JWTConfig struct {
	Secret            string `yaml:"secret"`
	Issuer            string `yaml:"issuer"`
	Audience          string `yaml:"audience"`
	ExpirationMinutes int    `yaml:"expiration_minutes"`
}

func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpirationMinutes) * time.Minute
}

type CORSConfig struct {
	Enabled bool     `yaml:"enabled"`
	Origins []string `yaml:"origins"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type WebConfig struct {
	APIBaseURL   string        `yaml:"api_base_url"`
	CookieSecure bool          `yaml:"cookie_secure"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
}

type AuthConfig struct {
	LoginLockWindow  time.Duration `yaml:"login_lock_window"`
	LoginMaxAttempts int           `yaml:"login_max_attempts"`
}

type SeedConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Password string `yaml:"password"`
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			Env:     "development",
			APIPort: "8080",
			WebPort: "8081",
		},
		Logger: LoggerConfig{
			Level:    "info",
			Encoding: "json",
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "data/catalog.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		JWT: JWTConfig{
			Secret:            "change-me-to-a-32-byte-secret-key!!",
			Issuer:            "catalog-api",
			Audience:          "catalog-clients",
			ExpirationMinutes: 60,
		},
		CORS: CORSConfig{
			Enabled: true,
			Origins: []string{"*"},
		},
		Web: WebConfig{
			APIBaseURL: "http://localhost:8080",
			SessionTTL: 30 * time.Minute,
		},
		Auth: AuthConfig{
			LoginLockWindow:  time.Minute,
			LoginMaxAttempts: 5,
		},
		Seed: SeedConfig{
			Enabled:  true,
			Password: "SampleEx4mF0rT3st!ñ",
		},
	}
}

// Load reads the optional YAML file at path, then .env, then the process
// environment. Later sources win.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.APIPort = getEnv("API_PORT", cfg.App.APIPort)
	cfg.App.WebPort = getEnv("WEB_PORT", cfg.App.WebPort)

	cfg.Logger.Level = getEnv("LOGGER_LEVEL", cfg.Logger.Level)
	cfg.Logger.Encoding = getEnv("LOGGER_ENCODING", cfg.Logger.Encoding)
	cfg.Logger.DisableCaller = getEnvBool("LOGGER_DISABLE_CALLER", cfg.Logger.DisableCaller)
	cfg.Logger.DisableStacktrace = getEnvBool("LOGGER_DISABLE_STACKTRACE", cfg.Logger.DisableStacktrace)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = getEnv("DATABASE_URL", cfg.Database.DSN)
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)

	cfg.JWT.Secret = getEnv("JWT_SECRET", cfg.JWT.Secret)
	cfg.JWT.Issuer = getEnv("JWT_ISSUER", cfg.JWT.Issuer)
	cfg.JWT.Audience = getEnv("JWT_AUDIENCE", cfg.JWT.Audience)
	cfg.JWT.ExpirationMinutes = getEnvInt("JWT_EXPIRATION_MINUTES", cfg.JWT.ExpirationMinutes)
	cfg.Auth.LoginMaxAttempts = getEnvInt("LOGIN_MAX_ATTEMPTS", cfg.Auth.LoginMaxAttempts)

	cfg.CORS.Enabled = getEnvBool("CORS_ENABLED", cfg.CORS.Enabled)
	cfg.CORS.Origins = getEnvSlice("ALLOWED_ORIGINS", cfg.CORS.Origins)

	cfg.Redis.URL = getEnv("REDIS_URL", cfg.Redis.URL)

	cfg.Web.APIBaseURL = getEnv("API_BASE_URL", cfg.Web.APIBaseURL)
	cfg.Web.CookieSecure = getEnvBool("COOKIE_SECURE", cfg.Web.CookieSecure)

	cfg.Seed.Enabled = getEnvBool("SEED_ENABLED", cfg.Seed.Enabled)
	cfg.Seed.Password = getEnv("SEED_PASSWORD", cfg.Seed.Password)

	var err error
	if cfg.Web.SessionTTL, err = getEnvDuration("SESSION_TTL", cfg.Web.SessionTTL); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.Auth.LoginLockWindow, err = getEnvDuration("LOGIN_LOCK_WINDOW", cfg.Auth.LoginLockWindow); err != nil {
		return nil, fmt.Errorf("invalid LOGIN_LOCK_WINDOW: %w", err)
	}
	if cfg.Database.ConnMaxLifetime, err = getEnvDuration("DB_CONN_MAX_LIFETIME", cfg.Database.ConnMaxLifetime); err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.JWT.ExpirationMinutes <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_MINUTES must be positive")
	}
	if c.Auth.LoginMaxAttempts <= 0 {
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}

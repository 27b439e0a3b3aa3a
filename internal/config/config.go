package config

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the application settings read from the environment.
type Config struct {
	AppPort string

	DatabaseDriver string
	DatabaseDSN    string
	SeedData       bool

	LogLevel  logrus.Level
	LogFormat string

	RabbitMQURL     string
	RabbitMQQueue   string
	RabbitMQConsume bool

	JWTSecret        string
	AuthUsername     string
	AuthPasswordHash string
	TokenTTL         time.Duration
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom reads the configuration through v, applying defaults first.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "catalog.db")
	v.SetDefault("SEED_DATA", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "catalog_events")
	v.SetDefault("RABBITMQ_CONSUME", false)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("AUTH_USERNAME", "admin")
	v.SetDefault("AUTH_PASSWORD_HASH", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:          v.GetString("APP_PORT"),
		DatabaseDriver:   v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		SeedData:         v.GetBool("SEED_DATA"),
		LogFormat:        v.GetString("LOG_FORMAT"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		RabbitMQQueue:    v.GetString("RABBITMQ_QUEUE"),
		RabbitMQConsume:  v.GetBool("RABBITMQ_CONSUME"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		AuthUsername:     v.GetString("AUTH_USERNAME"),
		AuthPasswordHash: v.GetString("AUTH_PASSWORD_HASH"),
		TokenTTL:         v.GetDuration("TOKEN_TTL"),
	}

	switch cfg.DatabaseDriver {
	case "sqlite", "postgres", "memory":
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q (want sqlite, postgres or memory)", cfg.DatabaseDriver)
	}

	level, err := logrus.ParseLevel(v.GetString("LOG_LEVEL"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("unsupported LOG_FORMAT %q (want json or text)", cfg.LogFormat)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive")
	}

	return cfg, nil
}

// EventsEnabled reports whether a RabbitMQ broker is configured.
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQURL != ""
}

// NewLogger builds the application logger.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(c.LogLevel)
	if c.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

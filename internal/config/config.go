package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"schedule_mastery/internal/disruption"
	"schedule_mastery/internal/results"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Game       GameConfig
	Disruption DisruptionConfig
	Results    ResultsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"SERVER_HOST"`
	Port         int           `mapstructure:"SERVER_PORT" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `mapstructure:"SERVER_IDLE_TIMEOUT"`
}

type LogConfig struct {
	Level       string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	Development bool   `mapstructure:"LOG_DEVELOPMENT"`
}

// GameConfig holds the day setup.
type GameConfig struct {
	CatalogPath string        `mapstructure:"CATALOG_PATH"`
	DayLength   time.Duration `mapstructure:"DAY_LENGTH" validate:"gt=0"`
}

type DisruptionConfig struct {
	Enabled  bool          `mapstructure:"DISRUPTION_ENABLED"`
	Interval time.Duration `mapstructure:"DISRUPTION_INTERVAL" validate:"gt=0"`
	Jitter   time.Duration `mapstructure:"DISRUPTION_JITTER" validate:"gte=0"`
	Effect   time.Duration `mapstructure:"DISRUPTION_EFFECT" validate:"gt=0"`
}

// ResultsConfig holds the results store settings.
type ResultsConfig struct {
	Backend    string `mapstructure:"RESULTS_BACKEND" validate:"oneof=memory sqlite postgres redis"`
	SQLitePath string `mapstructure:"SQLITE_PATH"`
	Postgres   results.PostgresConfig
	Redis      results.RedisConfig
}

// ServerAddr returns the HTTP listen address in host:port format.
func (s *ServerConfig) ServerAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Scheduler returns the disruption scheduler settings.
func (d DisruptionConfig) Scheduler() disruption.Config {
	return disruption.Config{Interval: d.Interval, Jitter: d.Jitter}
}

// Store returns the settings used to open the results store.
func (r ResultsConfig) Store() results.Config {
	return results.Config{
		Backend:    r.Backend,
		SQLitePath: r.SQLitePath,
		Postgres:   r.Postgres,
		Redis:      r.Redis,
	}
}

// Load reads configuration from environment variables and a .env file in
// the working directory.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	// ── Defaults ────────────────────────────────────────
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "5s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "120s")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEVELOPMENT", false)

	v.SetDefault("CATALOG_PATH", "")
	v.SetDefault("DAY_LENGTH", "20m")

	v.SetDefault("DISRUPTION_ENABLED", true)
	v.SetDefault("DISRUPTION_INTERVAL", "60s")
	v.SetDefault("DISRUPTION_JITTER", "30s")
	v.SetDefault("DISRUPTION_EFFECT", "120s")

	v.SetDefault("RESULTS_BACKEND", "sqlite")
	v.SetDefault("SQLITE_PATH", "data/results.db")

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "schedule")
	v.SetDefault("POSTGRES_PASSWORD", "schedule_secret")
	v.SetDefault("POSTGRES_DB", "schedule_db")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("POSTGRES_MAX_CONNS", 10)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	// A missing .env is fine: the environment alone is enough.
	_ = v.ReadInConfig()

	cfg := &Config{}

	// ── Server ──────────────────────────────────────────
	cfg.Server = ServerConfig{
		Host:         v.GetString("SERVER_HOST"),
		Port:         v.GetInt("SERVER_PORT"),
		ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
		WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		IdleTimeout:  v.GetDuration("SERVER_IDLE_TIMEOUT"),
	}

	cfg.Log = LogConfig{
		Level:       v.GetString("LOG_LEVEL"),
		Development: v.GetBool("LOG_DEVELOPMENT"),
	}

	// ── Game ────────────────────────────────────────────
	cfg.Game = GameConfig{
		CatalogPath: v.GetString("CATALOG_PATH"),
		DayLength:   v.GetDuration("DAY_LENGTH"),
	}
	cfg.Disruption = DisruptionConfig{
		Enabled:  v.GetBool("DISRUPTION_ENABLED"),
		Interval: v.GetDuration("DISRUPTION_INTERVAL"),
		Jitter:   v.GetDuration("DISRUPTION_JITTER"),
		Effect:   v.GetDuration("DISRUPTION_EFFECT"),
	}

	// ── Results ─────────────────────────────────────────
	cfg.Results = ResultsConfig{
		Backend:    v.GetString("RESULTS_BACKEND"),
		SQLitePath: v.GetString("SQLITE_PATH"),
		Postgres: results.PostgresConfig{
			Host:     v.GetString("POSTGRES_HOST"),
			Port:     v.GetInt("POSTGRES_PORT"),
			User:     v.GetString("POSTGRES_USER"),
			Password: v.GetString("POSTGRES_PASSWORD"),
			DBName:   v.GetString("POSTGRES_DB"),
			SSLMode:  v.GetString("POSTGRES_SSLMODE"),
			MaxConns: v.GetInt32("POSTGRES_MAX_CONNS"),
		},
		Redis: results.RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

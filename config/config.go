package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration settings.
type Config struct {
	Postgres   PostgresConfig   `yaml:"postgres"`
	NATS       NATSConfig       `yaml:"nats"`
	HTTP       HTTPConfig       `yaml:"http"`
	JWT        JWTConfig        `yaml:"jwt"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Tournament TournamentConfig `yaml:"tournament"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig holds the HTTP control surface configuration.
type HTTPConfig struct {
	ListenAddress string `yaml:"listen_address"`
}

// JWTConfig holds operator token configuration.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// MetricsConfig holds the Prometheus metrics endpoint configuration.
type MetricsConfig struct {
	Address string `yaml:"address"`
}

// TournamentConfig holds tournament-level defaults consumed by the
// shoot-off engine. Targets per round and the fixed-rounds round count are
// fixed at round creation from these values, never chosen per round.
type TournamentConfig struct {
	ShootOffTargetsPerRound int `yaml:"shoot_off_targets_per_round"`
	ShootOffFixedRoundCount int `yaml:"shoot_off_fixed_round_count"`
	MaxScorePerTarget       int `yaml:"max_score_per_target"`
}

// LoadConfig loads the configuration from a YAML file, falling back to
// environment variables when the file is absent. Env vars override file
// values either way.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("HTTP_LISTEN_ADDRESS"); v != "" {
		cfg.HTTP.ListenAddress = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Metrics.Address = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("JWT_DEFAULT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.JWT.DefaultTTL = d
		}
	}
	if v := os.Getenv("SHOOT_OFF_TARGETS_PER_ROUND"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tournament.ShootOffTargetsPerRound = n
		}
	}
	if v := os.Getenv("SHOOT_OFF_FIXED_ROUND_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tournament.ShootOffFixedRoundCount = n
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.ListenAddress == "" {
		cfg.HTTP.ListenAddress = ":3000"
	}
	if cfg.JWT.DefaultTTL == 0 {
		cfg.JWT.DefaultTTL = 24 * time.Hour
	}
	if cfg.Tournament.ShootOffTargetsPerRound == 0 {
		cfg.Tournament.ShootOffTargetsPerRound = 2
	}
	if cfg.Tournament.ShootOffFixedRoundCount == 0 {
		cfg.Tournament.ShootOffFixedRoundCount = 3
	}
	if cfg.Tournament.MaxScorePerTarget == 0 {
		cfg.Tournament.MaxScorePerTarget = 1
	}
}

func (cfg *Config) validate() error {
	if cfg.Postgres.DSN == "" {
		return fmt.Errorf("postgres DSN is required (set postgres.dsn or DATABASE_URL)")
	}
	if cfg.Tournament.ShootOffTargetsPerRound < 1 {
		return fmt.Errorf("shoot_off_targets_per_round must be at least 1")
	}
	if cfg.Tournament.ShootOffFixedRoundCount < 1 {
		return fmt.Errorf("shoot_off_fixed_round_count must be at least 1")
	}
	return nil
}

// loadConfigFromEnv loads the configuration from environment variables only.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config
	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

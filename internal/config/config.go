package config

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Identifier policies accepted by ID_POLICY.
const (
	PolicyRemint = "remint"
	PolicyReuse  = "reuse"
)

type Config struct {
	Env                string `mapstructure:"ENV"`
	LogLevel           string `mapstructure:"LOG_LEVEL"`
	StoreDriver        string `mapstructure:"STORE_DRIVER"`
	StorePath          string `mapstructure:"STORE_PATH"`
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	DBMaxConns         int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32  `mapstructure:"DB_MIN_CONNS"`
	StoreEncryptionKey string `mapstructure:"STORE_ENCRYPTION_KEY"`
	IDPolicy           string `mapstructure:"ID_POLICY"`
	MetricsFile        string `mapstructure:"METRICS_FILE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", DriverSQLite)
	v.SetDefault("STORE_PATH", "medmission.db")
	v.SetDefault("DB_MAX_CONNS", 4)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("ID_POLICY", PolicyRemint)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("STORE_DRIVER")
	v.BindEnv("STORE_PATH")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("STORE_ENCRYPTION_KEY")
	v.BindEnv("ID_POLICY")
	v.BindEnv("METRICS_FILE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.IDPolicy = strings.ToLower(strings.TrimSpace(cfg.IDPolicy))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks the enumerations and the settings each store driver needs.
// STORE_ENCRYPTION_KEY, when set, must be a 64-character hex string.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverSQLite, DriverFile:
		if c.StoreDriver != DriverMemory && c.StorePath == "" {
			return fmt.Errorf("STORE_PATH is required when STORE_DRIVER is %q", c.StoreDriver)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER is %q", DriverPostgres)
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of memory, file, sqlite, postgres, got %q", c.StoreDriver)
	}

	if c.IDPolicy != PolicyRemint && c.IDPolicy != PolicyReuse {
		return fmt.Errorf("ID_POLICY must be %q or %q, got %q", PolicyRemint, PolicyReuse, c.IDPolicy)
	}

	if c.StoreEncryptionKey != "" {
		keyBytes, err := hex.DecodeString(c.StoreEncryptionKey)
		if err != nil {
			return fmt.Errorf("STORE_ENCRYPTION_KEY is not valid hex: %w", err)
		}
		if len(keyBytes) != 32 {
			return fmt.Errorf("STORE_ENCRYPTION_KEY must be 32 bytes (64 hex chars), got %d bytes", len(keyBytes))
		}
	}

	return nil
}

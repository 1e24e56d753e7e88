package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const envPrefix = "stewardship"

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string   `yaml:"serviceName"  envconfig:"SERVICE_NAME"`
	HTTPPort     string   `yaml:"httpPort"     envconfig:"HTTP_PORT"`
	DBDriver     string   `yaml:"dbDriver"     envconfig:"DB_DRIVER"`
	DatabaseDSN  string   `yaml:"databaseDsn"  envconfig:"DATABASE_DSN"`
	KafkaBrokers []string `yaml:"kafkaBrokers" envconfig:"KAFKA_BROKERS"`

	LockTimeout        time.Duration `yaml:"lockTimeout"        envconfig:"LOCK_TIMEOUT"`
	CapabilityCacheTTL time.Duration `yaml:"capabilityCacheTtl" envconfig:"CAPABILITY_CACHE_TTL"`
	AggregationPolicy  string        `yaml:"aggregationPolicy"  envconfig:"AGGREGATION_POLICY"`
	OutboxBatchSize    int           `yaml:"outboxBatchSize"    envconfig:"OUTBOX_BATCH_SIZE"`
	OutboxPollInterval time.Duration `yaml:"outboxPollInterval" envconfig:"OUTBOX_POLL_INTERVAL"`

	JWTSecret      string `yaml:"jwtSecret"      envconfig:"JWT_SECRET"`
	TracingEnabled bool   `yaml:"tracingEnabled" envconfig:"TRACING_ENABLED"`
	LogLevel       string `yaml:"logLevel"       envconfig:"LOG_LEVEL"`
	LogFormat      string `yaml:"logFormat"      envconfig:"LOG_FORMAT"`

	EnableMembershipProjection bool `yaml:"enableMembershipProjection" envconfig:"ENABLE_MEMBERSHIP_PROJECTION"`
	MigrateOnStart             bool `yaml:"migrateOnStart"             envconfig:"MIGRATE_ON_START"`
}

func Defaults() Config {
	return Config{
		ServiceName:                "stewardship",
		HTTPPort:                   "8080",
		DBDriver:                   DriverSQLite,
		DatabaseDSN:                "stewardship.db",
		KafkaBrokers:               []string{"localhost:9092"},
		LockTimeout:                2 * time.Second,
		CapabilityCacheTTL:         time.Minute,
		AggregationPolicy:          "mean",
		OutboxBatchSize:            100,
		OutboxPollInterval:         time.Second,
		LogLevel:                   "info",
		LogFormat:                  "json",
		EnableMembershipProjection: true,
		MigrateOnStart:             true,
	}
}

// Load layers defaults, the optional YAML file and the environment, in that
// order. An empty path falls back to STEWARDSHIP_CONFIG.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if strings.TrimSpace(path) == "" {
		path = os.Getenv("STEWARDSHIP_CONFIG")
	}
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported db driver %q", c.DBDriver)
	}
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		return errors.New("database dsn is required")
	}
	if c.LockTimeout <= 0 {
		return errors.New("lock timeout must be positive")
	}
	if c.CapabilityCacheTTL < 0 {
		return errors.New("capability cache ttl must not be negative")
	}
	if c.OutboxPollInterval <= 0 {
		return errors.New("outbox poll interval must be positive")
	}
	return nil
}

func compact(items []string) []string {
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

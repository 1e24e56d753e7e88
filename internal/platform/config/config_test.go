package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadLayersFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stewardship.yaml")
	body := []byte("httpPort: \"9090\"\nlockTimeout: 3s\ndbDriver: postgres\ndatabaseDsn: postgres://localhost/stewardship\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("STEWARDSHIP_LOCK_TIMEOUT", "5s")
	t.Setenv("STEWARDSHIP_KAFKA_BROKERS", "kafka-1:9092, ,kafka-2:9092")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected port from file, got %q", cfg.HTTPPort)
	}
	if cfg.LockTimeout != 5*time.Second {
		t.Fatalf("expected env to override lock timeout, got %s", cfg.LockTimeout)
	}
	if cfg.DBDriver != DriverPostgres {
		t.Fatalf("expected postgres driver, got %q", cfg.DBDriver)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("expected compacted brokers, got %v", cfg.KafkaBrokers)
	}
	if cfg.CapabilityCacheTTL != time.Minute {
		t.Fatalf("expected default cache ttl, got %s", cfg.CapabilityCacheTTL)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STEWARDSHIP_DB_DRIVER", "oracle")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
environment: test
marketdata:
  providers:
    - name: alpha
      base_url: https://quotes.example.com
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("port %d", cfg.Server.Port)
	}
	if cfg.MarketData.CacheTTL != 30*time.Second {
		t.Fatalf("cache ttl %v", cfg.MarketData.CacheTTL)
	}
	if cfg.MarketData.CacheBackend != "memory" {
		t.Fatalf("backend %s", cfg.MarketData.CacheBackend)
	}
	if cfg.Validation.MinConfidence != 60 || cfg.Validation.MaxRisk != 8 {
		t.Fatalf("thresholds %v %v", cfg.Validation.MinConfidence, cfg.Validation.MaxRisk)
	}
	if cfg.Hub.RingCapacity != 500 || cfg.Hub.SubscriberBuffer != 100 {
		t.Fatalf("hub %+v", cfg.Hub)
	}
	if cfg.Registry.InactivityTimeout != 90*time.Second {
		t.Fatalf("inactivity %v", cfg.Registry.InactivityTimeout)
	}
}

func TestLoadMissingEnvironment(t *testing.T) {
	if _, err := Load(writeConfig(t, "server:\n  port: 9000\n")); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadMissingProviders(t *testing.T) {
	if _, err := Load(writeConfig(t, "environment: test\n")); err == nil {
		t.Fatalf("expected provider error")
	}
}

func TestLoadBadCacheBackend(t *testing.T) {
	body := minimalYAML + "  cache_backend: memcached\n"
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected backend error")
	}
}

func TestLoadKafkaRequiresBrokers(t *testing.T) {
	body := minimalYAML + "kafka:\n  enabled: true\n"
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected broker error")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	body := minimalYAML + `kafka:
  enabled: true
  brokers: [localhost:9092]
`
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("MARKETDATA_API_KEY", "sekret")

	cfg, err := LoadWithEnv(writeConfig(t, body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "k1:9092" {
		t.Fatalf("brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.MarketData.Providers[0].APIKey != "sekret" {
		t.Fatalf("api key not injected")
	}
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Provider struct {
	Name    string        `yaml:"name"`
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type RuleWeight struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Kind        string  `yaml:"kind"`
	Weight      float64 `yaml:"weight"`
	IsActive    *bool   `yaml:"is_active"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		RateLimit       struct {
			Enabled   bool    `yaml:"enabled"`
			PerSecond float64 `yaml:"per_second"`
			Burst     float64 `yaml:"burst"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	MarketData struct {
		Providers    []Provider    `yaml:"providers"`
		CacheTTL     time.Duration `yaml:"cache_ttl"`
		CacheBackend string        `yaml:"cache_backend"` // memory, redis, layered
		FetchTimeout time.Duration `yaml:"fetch_timeout"`
		BulkDelay    time.Duration `yaml:"bulk_delay"`
		Redis        struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"marketdata"`
	Validation struct {
		MinConfidence  float64       `yaml:"min_confidence"`
		MaxRisk        float64       `yaml:"max_risk"`
		OverallTimeout time.Duration `yaml:"overall_timeout"`
		RuleTimeout    time.Duration `yaml:"rule_timeout"`
		Rules          []RuleWeight  `yaml:"rules"`
	} `yaml:"validation"`
	Hub struct {
		RingCapacity     int `yaml:"ring_capacity"`
		SubscriberBuffer int `yaml:"subscriber_buffer"`
	} `yaml:"hub"`
	Registry struct {
		SweepInterval     time.Duration `yaml:"sweep_interval"`
		InactivityTimeout time.Duration `yaml:"inactivity_timeout"`
	} `yaml:"registry"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		SignalsTopic string   `yaml:"signals_topic"`
		IntakeTopic  string   `yaml:"intake_topic"`
		Compression  string   `yaml:"compression"`
		RequiredAcks int      `yaml:"required_acks"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID  string `yaml:"group_id"`
			Workers  int    `yaml:"workers"`
			MinBytes int    `yaml:"min_bytes"`
			MaxBytes int    `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		Table        string        `yaml:"table"`
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.MarketData.Redis.Password = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("MARKETDATA_API_KEY"); v != "" {
		for i := range c.MarketData.Providers {
			if c.MarketData.Providers[i].APIKey == "" {
				c.MarketData.Providers[i].APIKey = v
			}
		}
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Server.RateLimit.PerSecond == 0 {
		c.Server.RateLimit.PerSecond = 20
	}
	if c.Server.RateLimit.Burst == 0 {
		c.Server.RateLimit.Burst = 40
	}
	if c.MarketData.CacheTTL == 0 {
		c.MarketData.CacheTTL = 30 * time.Second
	}
	if c.MarketData.CacheBackend == "" {
		c.MarketData.CacheBackend = "memory"
	}
	if c.MarketData.FetchTimeout == 0 {
		c.MarketData.FetchTimeout = 12 * time.Second
	}
	if c.MarketData.BulkDelay == 0 {
		c.MarketData.BulkDelay = 200 * time.Millisecond
	}
	if c.Validation.MinConfidence == 0 {
		c.Validation.MinConfidence = 60
	}
	if c.Validation.MaxRisk == 0 {
		c.Validation.MaxRisk = 8
	}
	if c.Validation.OverallTimeout == 0 {
		c.Validation.OverallTimeout = 20 * time.Second
	}
	if c.Validation.RuleTimeout == 0 {
		c.Validation.RuleTimeout = 2 * time.Second
	}
	if c.Hub.RingCapacity == 0 {
		c.Hub.RingCapacity = 500
	}
	if c.Hub.SubscriberBuffer == 0 {
		c.Hub.SubscriberBuffer = 100
	}
	if c.Registry.SweepInterval == 0 {
		c.Registry.SweepInterval = 30 * time.Second
	}
	if c.Registry.InactivityTimeout == 0 {
		c.Registry.InactivityTimeout = 90 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.MarketData.Providers) == 0 {
		return fmt.Errorf("marketdata.providers cannot be empty")
	}
	for _, p := range c.MarketData.Providers {
		if p.Name == "" || p.BaseURL == "" {
			return fmt.Errorf("marketdata provider requires name and base_url")
		}
	}
	switch c.MarketData.CacheBackend {
	case "memory", "redis", "layered":
	default:
		return fmt.Errorf("marketdata.cache_backend must be 'memory', 'redis' or 'layered', got '%s'", c.MarketData.CacheBackend)
	}
	if c.Validation.MinConfidence < 0 || c.Validation.MinConfidence > 100 {
		return fmt.Errorf("validation.min_confidence must be within [0,100]")
	}
	if c.Validation.MaxRisk < 0 || c.Validation.MaxRisk > 10 {
		return fmt.Errorf("validation.max_risk must be within [0,10]")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host required when clickhouse is enabled")
	}
	return nil
}

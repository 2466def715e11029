package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Search    SearchConfig    `yaml:"search"`
	Notify    NotifyConfig    `yaml:"notify"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type SearchConfig struct {
	// SimulatedLatency models network lookup time before results are
	// computed.
	SimulatedLatency time.Duration `yaml:"-"`
	SessionTTL       time.Duration `yaml:"-"`
}

// Durations arrive as strings like "2s" and "30m"; yaml has no native
// duration scalar.
func (c *SearchConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		SimulatedLatency string `yaml:"simulated_latency"`
		SessionTTL       string `yaml:"session_ttl"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	var err error
	if c.SimulatedLatency, err = parseDuration(raw.SimulatedLatency, c.SimulatedLatency); err != nil {
		return err
	}
	c.SessionTTL, err = parseDuration(raw.SessionTTL, c.SessionTTL)
	return err
}

type NotifyConfig struct {
	Recipient string        `yaml:"recipient"`
	Delay     time.Duration `yaml:"-"`
	QueueSize int           `yaml:"queue_size"`
	RPS       float64       `yaml:"rps"`
	Burst     int           `yaml:"burst"`
}

func (c *NotifyConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain NotifyConfig
	var raw struct {
		plain `yaml:",inline"`
		Delay string `yaml:"delay"`
	}
	raw.plain = plain(*c)
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*c = NotifyConfig(raw.plain)
	var err error
	c.Delay, err = parseDuration(raw.Delay, c.Delay)
	return err
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080"},
		Search: SearchConfig{
			SimulatedLatency: 2 * time.Second,
			SessionTTL:       30 * time.Minute,
		},
		Notify: NotifyConfig{
			Recipient: "search-alerts@flightscout.local",
			Delay:     time.Second,
			QueueSize: 64,
			RPS:       5,
			Burst:     10,
		},
		Redis: RedisConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    "6379",
		},
		RateLimit: RateLimitConfig{RPS: 5, Burst: 10},
	}
}

// Load reads the yaml file when present, then lets environment
// variables override the common knobs. A missing file is fine; the
// defaults stand.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", cfg.Redis.Enabled)
	cfg.Redis.Host = getEnv("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = getEnv("REDIS_PORT", cfg.Redis.Port)
	cfg.Search.SimulatedLatency = getEnvDuration("SEARCH_LATENCY", cfg.Search.SimulatedLatency)

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return value == "yes"
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

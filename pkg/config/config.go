package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins" default:"[\"*\"]"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Feed struct {
		WebSocketURL string        `yaml:"websocket_url" default:"wss://stream.binance.com:9443/ws"`
		RestURL      string        `yaml:"rest_url" default:"https://api.binance.com"`
		BufferSize   int           `yaml:"buffer_size" default:"100"`
		PingInterval time.Duration `yaml:"ping_interval" default:"30s"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"10s"`
		Quote        struct {
			CacheTTL      time.Duration `yaml:"cache_ttl" default:"2s"`
			RatePerSecond float64       `yaml:"rate_per_second" default:"2"`
			Burst         float64       `yaml:"burst" default:"5"`
		} `yaml:"quote"`
		Reconnect    struct {
			Enabled   bool          `yaml:"enabled" default:"true"`
			BaseDelay time.Duration `yaml:"base_delay" default:"1s"`
			MaxDelay  time.Duration `yaml:"max_delay" default:"60s"`
		} `yaml:"reconnect"`
	} `yaml:"feed"`
	Settings struct {
		Backend  string `yaml:"backend" default:"file"`
		Path     string `yaml:"path"`
		RedisKey string `yaml:"redis_key" default:"pricewatch:settings"`
	} `yaml:"settings"`
	Redis struct {
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size" default:"10"`
	} `yaml:"redis"`
	Notify struct {
		HubBuffer int `yaml:"hub_buffer" default:"256"`
		Kafka     struct {
			Enabled      bool     `yaml:"enabled"`
			Brokers      []string `yaml:"brokers"`
			Topic        string   `yaml:"topic" default:"pricewatch.events"`
			Compression  string   `yaml:"compression" default:"snappy"`
			RequiredAcks int      `yaml:"required_acks" default:"1"`
		} `yaml:"kafka"`
	} `yaml:"notify"`
}

// envOverrides lists the PRICEWATCH_* variables that override the file.
type envOverrides struct {
	Environment     string   `envconfig:"ENVIRONMENT"`
	Port            int      `envconfig:"PORT"`
	LogLevel        string   `envconfig:"LOG_LEVEL"`
	FeedURL         string   `envconfig:"FEED_URL"`
	SettingsBackend string   `envconfig:"SETTINGS_BACKEND"`
	SettingsPath    string   `envconfig:"SETTINGS_PATH"`
	RedisHost       string   `envconfig:"REDIS_HOST"`
	RedisPassword   string   `envconfig:"REDIS_PASSWORD"`
	KafkaBrokers    []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic      string   `envconfig:"KAFKA_TOPIC"`
}

// Default returns a config with every default applied.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if c.Settings.Path == "" {
		c.Settings.Path = defaultSettingsPath()
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	var ov envOverrides
	if err := envconfig.Process("PRICEWATCH", &ov); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	c.apply(ov)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) apply(ov envOverrides) {
	if ov.Environment != "" {
		c.Environment = ov.Environment
	}
	if ov.Port != 0 {
		c.Server.Port = ov.Port
	}
	if ov.LogLevel != "" {
		c.Log.Level = ov.LogLevel
	}
	if ov.FeedURL != "" {
		c.Feed.WebSocketURL = ov.FeedURL
	}
	if ov.SettingsBackend != "" {
		c.Settings.Backend = ov.SettingsBackend
	}
	if ov.SettingsPath != "" {
		c.Settings.Path = ov.SettingsPath
	}
	if ov.RedisHost != "" {
		c.Redis.Host = ov.RedisHost
	}
	if ov.RedisPassword != "" {
		c.Redis.Password = ov.RedisPassword
	}
	if len(ov.KafkaBrokers) > 0 {
		c.Notify.Kafka.Brokers = ov.KafkaBrokers
		c.Notify.Kafka.Enabled = true
	}
	if ov.KafkaTopic != "" {
		c.Notify.Kafka.Topic = ov.KafkaTopic
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if !strings.HasPrefix(c.Feed.WebSocketURL, "ws://") && !strings.HasPrefix(c.Feed.WebSocketURL, "wss://") {
		return fmt.Errorf("feed.websocket_url must be a ws:// or wss:// url, got '%s'", c.Feed.WebSocketURL)
	}
	if c.Feed.BufferSize <= 0 {
		return fmt.Errorf("feed.buffer_size must be positive")
	}
	if c.Feed.Reconnect.Enabled && (c.Feed.Reconnect.BaseDelay <= 0 || c.Feed.Reconnect.MaxDelay < c.Feed.Reconnect.BaseDelay) {
		return fmt.Errorf("feed.reconnect delays must satisfy 0 < base_delay <= max_delay")
	}
	switch c.Settings.Backend {
	case "file":
		if c.Settings.Path == "" {
			return fmt.Errorf("settings.path is required for the file backend")
		}
	case "redis":
		if c.Settings.RedisKey == "" {
			return fmt.Errorf("settings.redis_key is required for the redis backend")
		}
	default:
		return fmt.Errorf("settings.backend must be 'file' or 'redis', got '%s'", c.Settings.Backend)
	}
	if c.Notify.Kafka.Enabled && len(c.Notify.Kafka.Brokers) == 0 {
		return fmt.Errorf("notify.kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}

// defaultSettingsPath mirrors the desktop app data dir location.
func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "settings.json"
	}
	return dir + string(os.PathSeparator) + "pricewatch" + string(os.PathSeparator) + "settings.json"
}

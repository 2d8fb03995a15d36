package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 8080 {
		t.Fatalf("port = %d", c.Server.Port)
	}
	if c.Feed.BufferSize != 100 {
		t.Fatalf("buffer = %d", c.Feed.BufferSize)
	}
	if !c.Feed.Reconnect.Enabled || c.Feed.Reconnect.BaseDelay != time.Second {
		t.Fatalf("unexpected reconnect %+v", c.Feed.Reconnect)
	}
	if c.Settings.Backend != "file" || c.Settings.Path == "" {
		t.Fatalf("unexpected settings %+v", c.Settings)
	}
	if len(c.Server.CORSOrigins) != 1 || c.Server.CORSOrigins[0] != "*" {
		t.Fatalf("cors origins = %v", c.Server.CORSOrigins)
	}
	if c.Feed.Quote.CacheTTL != 2*time.Second || c.Feed.Quote.Burst != 5 {
		t.Fatalf("unexpected quote config %+v", c.Feed.Quote)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
environment: production
server:
  port: 9090
feed:
  websocket_url: ws://localhost:1234/ws
  reconnect:
    enabled: false
settings:
  backend: redis
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Environment != "production" || c.Server.Port != 9090 {
		t.Fatalf("unexpected %+v", c)
	}
	if c.Feed.Reconnect.Enabled {
		t.Fatalf("expected reconnect disabled")
	}
	if c.Settings.RedisKey != "pricewatch:settings" {
		t.Fatalf("default redis key lost: %q", c.Settings.RedisKey)
	}
}

func TestValidateRejectsBadBackend(t *testing.T) {
	c, _ := Default()
	c.Settings.Backend = "sqlite"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateKafkaNeedsBrokers(t *testing.T) {
	c, _ := Default()
	c.Notify.Kafka.Enabled = true
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("PRICEWATCH_PORT", "7000")
	t.Setenv("PRICEWATCH_SETTINGS_PATH", "/tmp/pw/settings.json")
	t.Setenv("PRICEWATCH_KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 7000 {
		t.Fatalf("port = %d", c.Server.Port)
	}
	if c.Settings.Path != "/tmp/pw/settings.json" {
		t.Fatalf("path = %q", c.Settings.Path)
	}
	if !c.Notify.Kafka.Enabled || len(c.Notify.Kafka.Brokers) != 2 {
		t.Fatalf("kafka = %+v", c.Notify.Kafka)
	}
}

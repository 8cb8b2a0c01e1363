package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig writes YAML content to a temp file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeConfig(t, `
dirigera:
  ip: "192.168.1.50"
  token: "test-token"
mqtt:
  broker:
    host: "broker.local"
    port: 8883
    tls: true
  auth:
    username: "bridge"
    password: "secret"
bridge:
  base_topic: "home/dirigera"
  poll_interval: 120
  dedup_window: 10
logging:
  level: "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Dirigera.IP != "192.168.1.50" {
		t.Errorf("Dirigera.IP = %q", cfg.Dirigera.IP)
	}
	if cfg.Dirigera.Port != 8443 {
		t.Errorf("Dirigera.Port = %d, want default 8443", cfg.Dirigera.Port)
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q", cfg.MQTT.Broker.Host)
	}
	if !cfg.MQTT.Broker.TLS {
		t.Error("MQTT.Broker.TLS = false, want true")
	}
	if cfg.Bridge.BaseTopic != "home/dirigera" {
		t.Errorf("Bridge.BaseTopic = %q", cfg.Bridge.BaseTopic)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() error = nil for missing file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "dirigera: [not: valid")

	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil for malformed YAML")
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
dirigera:
  token: "test-token"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "localhost" || cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("broker defaults = %s:%d, want localhost:1883", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.QoS != 1 {
		t.Errorf("QoS = %d, want default 1", cfg.MQTT.QoS)
	}
	if cfg.Bridge.PollInterval != 300 {
		t.Errorf("Bridge.PollInterval = %d, want default 300", cfg.Bridge.PollInterval)
	}
	if cfg.Bridge.DedupWindow != 5 {
		t.Errorf("Bridge.DedupWindow = %d, want default 5", cfg.Bridge.DedupWindow)
	}
	if cfg.Bridge.BaseTopic != "dirigera" {
		t.Errorf("Bridge.BaseTopic = %q, want default dirigera", cfg.Bridge.BaseTopic)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
dirigera:
  token: "file-token"
mqtt:
  broker:
    host: "file-host"
`)

	t.Setenv("DIRIGERA_TOKEN", "env-token")
	t.Setenv("MQTT_HOST", "env-host")
	t.Setenv("MQTT_PORT", "8883")
	t.Setenv("POLL_INTERVAL", "60")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Dirigera.Token != "env-token" {
		t.Errorf("Dirigera.Token = %q, want env override", cfg.Dirigera.Token)
	}
	if cfg.MQTT.Broker.Host != "env-host" {
		t.Errorf("MQTT.Broker.Host = %q, want env override", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("MQTT.Broker.Port = %d, want 8883", cfg.MQTT.Broker.Port)
	}
	if cfg.Bridge.PollInterval != 60 {
		t.Errorf("Bridge.PollInterval = %d, want 60", cfg.Bridge.PollInterval)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Dirigera.Token = "test-token"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing token", func(c *Config) { c.Dirigera.Token = "" }, "dirigera.token"},
		{"missing ip", func(c *Config) { c.Dirigera.IP = "" }, "dirigera.ip"},
		{"bad hub port", func(c *Config) { c.Dirigera.Port = 0 }, "dirigera.port"},
		{"bad qos", func(c *Config) { c.MQTT.QoS = 3 }, "mqtt.qos"},
		{"bad broker port", func(c *Config) { c.MQTT.Broker.Port = 70000 }, "mqtt.broker.port"},
		{"empty base topic", func(c *Config) { c.Bridge.BaseTopic = "" }, "bridge.base_topic"},
		{"wildcard base topic", func(c *Config) { c.Bridge.BaseTopic = "home/#" }, "bridge.base_topic"},
		{"zero poll interval", func(c *Config) { c.Bridge.PollInterval = 0 }, "bridge.poll_interval"},
		{"negative dedup window", func(c *Config) { c.Bridge.DedupWindow = -1 }, "bridge.dedup_window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() error = nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestDurationGetters(t *testing.T) {
	cfg := defaultConfig()

	if got := cfg.PollInterval(); got != 300*time.Second {
		t.Errorf("PollInterval() = %v, want 300s", got)
	}
	if got := cfg.DedupWindow(); got != 5*time.Second {
		t.Errorf("DedupWindow() = %v, want 5s", got)
	}
}

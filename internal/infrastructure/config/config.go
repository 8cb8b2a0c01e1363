package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the DIRIGERA bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Dirigera DirigeraConfig `yaml:"dirigera"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Bridge   BridgeConfig   `yaml:"bridge"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DirigeraConfig contains DIRIGERA hub connection settings.
type DirigeraConfig struct {
	// IP is the hub's address on the local network.
	IP string `yaml:"ip"`

	// Port is the hub's HTTPS/WebSocket API port.
	Port int `yaml:"port"`

	// Token is the bearer token obtained during hub pairing.
	// Always set via the DIRIGERA_TOKEN environment variable in production.
	Token string `yaml:"token"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// BridgeConfig contains the bridge's own behaviour settings.
type BridgeConfig struct {
	// BaseTopic is the MQTT topic prefix for all published device state.
	BaseTopic string `yaml:"base_topic"`

	// PollInterval is the time between full device polls, in seconds.
	PollInterval int `yaml:"poll_interval"`

	// DedupWindow is the span in seconds during which an identical update
	// for the same device is suppressed from re-publication.
	DedupWindow int `yaml:"dedup_window"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables use the names the original deployment documented:
// DIRIGERA_TOKEN, DIRIGERA_IP, MQTT_HOST, MQTT_PORT, MQTT_USER, MQTT_PASSWORD,
// MQTT_BASE_TOPIC, POLL_INTERVAL, DEDUP_WINDOW, LOG_LEVEL.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Dirigera: DirigeraConfig{
			IP:   "192.168.0.1",
			Port: 8443,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "dirigera-bridge",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Bridge: BridgeConfig{
			BaseTopic:    "dirigera",
			PollInterval: 300,
			DedupWindow:  5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Hub
	if v := os.Getenv("DIRIGERA_TOKEN"); v != "" {
		cfg.Dirigera.Token = v
	}
	if v := os.Getenv("DIRIGERA_IP"); v != "" {
		cfg.Dirigera.IP = v
	}

	// MQTT
	if v := os.Getenv("MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("MQTT_USER"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Bridge
	if v := os.Getenv("MQTT_BASE_TOPIC"); v != "" {
		cfg.Bridge.BaseTopic = v
	}
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.Bridge.PollInterval = secs
		}
	}
	if v := os.Getenv("DEDUP_WINDOW"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.Bridge.DedupWindow = secs
		}
	}

	// Logging
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Hub validation - the token is the only credential the bridge holds.
	if c.Dirigera.Token == "" {
		errs = append(errs, "dirigera.token is required (set DIRIGERA_TOKEN environment variable)")
	}
	if c.Dirigera.IP == "" {
		errs = append(errs, "dirigera.ip is required")
	}
	if c.Dirigera.Port < 1 || c.Dirigera.Port > 65535 {
		errs = append(errs, "dirigera.port must be between 1 and 65535")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}

	// Bridge validation
	if c.Bridge.BaseTopic == "" {
		errs = append(errs, "bridge.base_topic is required")
	}
	if strings.ContainsAny(c.Bridge.BaseTopic, "+#") {
		errs = append(errs, "bridge.base_topic must not contain MQTT wildcards")
	}
	if c.Bridge.PollInterval < 1 {
		errs = append(errs, "bridge.poll_interval must be at least 1 second")
	}
	if c.Bridge.DedupWindow < 0 {
		errs = append(errs, "bridge.dedup_window must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// PollInterval returns the poll interval as a Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Bridge.PollInterval) * time.Second
}

// DedupWindow returns the deduplication window as a Duration.
func (c *Config) DedupWindow() time.Duration {
	return time.Duration(c.Bridge.DedupWindow) * time.Second
}

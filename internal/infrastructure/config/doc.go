// Package config loads and validates the bridge configuration.
//
// Configuration is read from a YAML file, merged over hardcoded defaults,
// and finally overridden by environment variables so the bridge can run
// unchanged in a container where only DIRIGERA_TOKEN and MQTT_HOST are set.
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//		return err
//	}
//	interval := cfg.PollInterval()
//
// # Security
//
// The DIRIGERA token grants full control over the hub. Keep it out of the
// YAML file in deployments and provide it via DIRIGERA_TOKEN instead.
package config

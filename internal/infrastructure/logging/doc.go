// Package logging provides structured logging for the DIRIGERA bridge.
//
// It wraps Go's standard log/slog package so every component logs in the
// same structured key/value style, with the service name and version
// attached to each entry.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("connected to hub", "ip", cfg.Dirigera.IP)
//
// Never log the hub token or MQTT credentials.
package logging

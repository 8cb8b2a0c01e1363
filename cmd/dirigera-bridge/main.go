// DIRIGERA to MQTT Bridge
//
// Relays device state from an IKEA DIRIGERA hub into an MQTT broker,
// combining the hub's WebSocket event stream with a periodic full poll and
// de-duplicating the result into one canonical stream per device.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/dirigera-bridge/internal/bridge"
	"github.com/nerrad567/dirigera-bridge/internal/dirigera"
	"github.com/nerrad567/dirigera-bridge/internal/infrastructure/config"
	"github.com/nerrad567/dirigera-bridge/internal/infrastructure/logging"
	"github.com/nerrad567/dirigera-bridge/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting DIRIGERA bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("bridge configuration",
		"hub", cfg.Dirigera.IP,
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"base_topic", cfg.Bridge.BaseTopic,
		"poll_interval", cfg.PollInterval(),
		"dedup_window", cfg.DedupWindow(),
	)

	// Connect to MQTT broker
	topics := mqtt.Topics{Base: cfg.Bridge.BaseTopic}
	mqttClient, err := mqtt.Connect(cfg.MQTT, topics)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected", "client_id", cfg.MQTT.Broker.ClientID)

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Assemble the reconciliation core
	store := bridge.NewStore()
	normalizer := bridge.NewNormalizer(store)
	engine := bridge.NewEngine(bridge.EngineOptions{
		Store:       store,
		Sink:        &mqttSink{client: mqttClient},
		Topics:      topics,
		DedupWindow: cfg.DedupWindow(),
		Logger:      log.With("component", "engine"),
	})

	hub := dirigera.NewClient(cfg.Dirigera)
	poller := bridge.NewPoller(bridge.PollerOptions{
		Source:     hub,
		Store:      store,
		Normalizer: normalizer,
		Engine:     engine,
		Interval:   cfg.PollInterval(),
		Logger:     log.With("component", "poller"),
	})

	pushHandler := bridge.NewPushHandler(normalizer, engine, log.With("component", "push"))
	listener := dirigera.NewListener(cfg.Dirigera, pushHandler.Handle, log.With("component", "events"))

	log.Info("initialisation complete")

	// Poll loop and push listener run as independent producers feeding the
	// same engine; either returning ends the bridge.
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return poller.Run(gctx)
	})
	group.Go(func() error {
		return listener.Run(gctx)
	})

	err = group.Wait()
	log.Info("shutdown signal received, cleaning up")
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// getConfigPath returns the configuration file path.
// Uses DIRIGERA_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("DIRIGERA_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// mqttSink adapts the infrastructure MQTT client to the engine's Sink
// interface: device state goes out at the configured QoS, not retained.
type mqttSink struct {
	client *mqtt.Client
}

// Publish implements bridge.Sink.
func (s *mqttSink) Publish(topic string, payload []byte) error {
	return s.client.PublishDefault(topic, payload)
}

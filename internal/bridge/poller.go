package bridge

import (
	"context"
	"time"

	"github.com/nerrad567/dirigera-bridge/internal/dirigera"
)

// PollSource lists full device snapshots per category.
// Implemented by *dirigera.Client. Each call returns zero or more snapshots;
// a non-nil error means the query failed and must not be treated as an empty
// category, or devices absent from a degraded response would lose their
// dedup context.
type PollSource interface {
	EnvironmentSensors(ctx context.Context) ([]dirigera.Device, error)
	MotionSensors(ctx context.Context) ([]dirigera.Device, error)
	OpenCloseSensors(ctx context.Context) ([]dirigera.Device, error)
	Lights(ctx context.Context) ([]dirigera.Device, error)
	AirPurifiers(ctx context.Context) ([]dirigera.Device, error)
	Outlets(ctx context.Context) ([]dirigera.Device, error)
	Controllers(ctx context.Context) ([]dirigera.Device, error)
}

// Poller drives the periodic full-snapshot feed: once per cycle it lists
// every device category, seeds the type cache, and admits each snapshot to
// the engine.
type Poller struct {
	source     PollSource
	store      *Store
	normalizer *Normalizer
	engine     *Engine
	interval   time.Duration
	logger     Logger

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// PollerOptions holds configuration for creating a Poller.
type PollerOptions struct {
	// Source lists device snapshots. Required.
	Source PollSource

	// Store is the shared state store. Required.
	Store *Store

	// Normalizer translates raw snapshots. Required.
	Normalizer *Normalizer

	// Engine admits the normalised records. Required.
	Engine *Engine

	// Interval is the time between poll cycles.
	Interval time.Duration

	// Logger is optional; defaults to a no-op logger.
	Logger Logger
}

// NewPoller creates a poller.
func NewPoller(opts PollerOptions) *Poller {
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Poller{
		source:     opts.Source,
		store:      opts.Store,
		normalizer: opts.Normalizer,
		engine:     opts.Engine,
		interval:   opts.Interval,
		logger:     logger,
		now:        time.Now,
	}
}

// Run polls immediately, then on every tick until the context is cancelled.
//
// Returns:
//   - error: ctx.Err() after cancellation
func (p *Poller) Run(ctx context.Context) error {
	p.PollOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce runs a single poll cycle over all device categories.
//
// Per category: list snapshots, fold controller sub-identities (only the
// first sub-id per base id is processed within a cycle), seed the type
// cache, normalise, admit. A failed category query is logged and skipped;
// the remaining categories still run. The cycle completion timestamp is
// recorded at the very end, after all categories, which skews the freshness
// comparison by the cycle's own duration - observed behaviour, kept as-is.
func (p *Poller) PollOnce(ctx context.Context) {
	p.logger.Info("poll cycle started")

	published, suppressed := 0, 0
	seenControllers := make(map[string]struct{})

	categories := []struct {
		deviceType DeviceType
		list       func(context.Context) ([]dirigera.Device, error)
	}{
		{DeviceTypeEnvironmentSensor, p.source.EnvironmentSensors},
		{DeviceTypeMotionSensor, p.source.MotionSensors},
		{DeviceTypeOpenCloseSensor, p.source.OpenCloseSensors},
		{DeviceTypeLight, p.source.Lights},
		{DeviceTypeAirPurifier, p.source.AirPurifiers},
		{DeviceTypeOutlet, p.source.Outlets},
		{DeviceTypeController, p.source.Controllers},
	}

	for _, category := range categories {
		devices, err := category.list(ctx)
		if err != nil {
			// Failed query, not an empty category: leave all state alone.
			p.logger.Error("poll query failed",
				"category", category.deviceType.TopicSegment(),
				"error", err,
			)
			continue
		}

		for _, raw := range devices {
			if category.deviceType == DeviceTypeController {
				base := BaseDeviceID(raw.ID)
				if _, seen := seenControllers[base]; seen {
					continue
				}
				seenControllers[base] = struct{}{}
			}

			rec := p.normalizer.Snapshot(category.deviceType, raw)
			p.store.CacheType(rec.DeviceID, category.deviceType, rec)

			if p.engine.Admit(rec, SourcePoll) == DecisionPublished {
				published++
			} else {
				suppressed++
			}
		}
	}

	p.store.SetLastPollCycle(p.now())

	p.logger.Info("poll cycle complete",
		"published", published,
		"suppressed", suppressed,
		"devices", p.store.KnownDevices(),
	)
}

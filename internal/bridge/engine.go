package bridge

import (
	"encoding/json"
	"time"

	"github.com/nerrad567/dirigera-bridge/internal/infrastructure/mqtt"
)

// Decision is the outcome of admitting a record.
type Decision string

// Decision constants.
const (
	DecisionPublished  Decision = "published"
	DecisionSuppressed Decision = "suppressed"
)

// Sink receives the records the engine decides to publish.
// Implemented by an adapter over the MQTT client; delivery is fire-and-forget
// and at-least-once is acceptable because downstream dedup protects against
// echo.
type Sink interface {
	Publish(topic string, payload []byte) error
}

// Logger is the logging interface used by the bridge package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Engine reconciles the two device feeds into a single de-duplicated stream.
//
// For every incoming record it merges against the device's baseline,
// arbitrates freshness between poll and push, decides publish or suppress,
// commits the state store, and emits to the sink. The merge→compare→write
// sequence runs atomically per device id; the sink call happens after the
// lock is released.
//
// Admit never returns an error: both the poll loop and the push listener
// must stay alive indefinitely, so internal anomalies degrade to a logged
// suppression.
type Engine struct {
	store       *Store
	sink        Sink
	topics      mqtt.Topics
	dedupWindow time.Duration
	logger      Logger

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// EngineOptions holds configuration for creating an Engine.
type EngineOptions struct {
	// Store is the shared state store. Required.
	Store *Store

	// Sink receives published records. Required.
	Sink Sink

	// Topics builds the per-device publish topics.
	Topics mqtt.Topics

	// DedupWindow is the span during which an identical record for the
	// same device is suppressed.
	DedupWindow time.Duration

	// Logger is optional; defaults to a no-op logger.
	Logger Logger
}

// NewEngine creates a reconciliation engine.
func NewEngine(opts EngineOptions) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Engine{
		store:       opts.Store,
		sink:        opts.Sink,
		topics:      opts.Topics,
		dedupWindow: opts.DedupWindow,
		logger:      logger,
		now:         time.Now,
	}
}

// Admit runs the merge, suppression, and freshness arbitration for one
// record and publishes it when it survives.
//
// Algorithm, executed atomically per device id:
//  1. Push records are merged over the device baseline (delta fields win,
//     baseline fields absent from the delta are retained). Poll records are
//     already complete and replace the baseline wholesale.
//  2. Within the dedup window, a record whose comparable fields equal the
//     baseline is suppressed.
//  3. Poll records with unchanged values are additionally suppressed when a
//     push update arrived after the previous poll cycle completed - the
//     push already delivered fresher data than this snapshot.
//  4. On publish the store is committed first, then the sink is called;
//     a failed sink call is logged but the commit stands. The trade-off is
//     deliberate: a retry storm against a down broker would be worse than
//     one missed update that the next value change corrects.
//
// Parameters:
//   - rec: Normalised record from either feed
//   - source: Which feed produced it
//
// Returns:
//   - Decision: whether the record was published or suppressed
func (e *Engine) Admit(rec Record, source Source) Decision {
	if rec.DeviceID == "" {
		e.logger.Warn("dropping record with empty device id", "source", source)
		return DecisionSuppressed
	}

	ds := e.store.device(rec.DeviceID)
	ds.mu.Lock()

	merged := rec.Clone()
	if source == SourcePush && ds.lastValue != nil {
		merged = mergeRecords(*ds.lastValue, rec)
	}

	now := e.now()

	// Time-window suppression: identical values inside the dedup window.
	if ds.lastValue != nil && !ds.lastPublish.IsZero() &&
		now.Sub(ds.lastPublish) < e.dedupWindow &&
		merged.ComparableEqual(*ds.lastValue) {
		ds.mu.Unlock()
		e.logger.Debug("duplicate suppressed", "device_id", rec.DeviceID, "source", source)
		return DecisionSuppressed
	}

	// Poll freshness arbitration. Value changes always propagate; an
	// unchanged snapshot is suppressed when push data arrived after the
	// previous cycle finished.
	if source == SourcePoll {
		unchanged := ds.lastValue != nil && merged.ComparableEqual(*ds.lastValue)
		if unchanged && !ds.lastPushUpdate.IsZero() &&
			ds.lastPushUpdate.After(e.store.LastPollCycle()) {
			ds.mu.Unlock()
			e.logger.Debug("poll suppressed, push is fresher", "device_id", rec.DeviceID)
			return DecisionSuppressed
		}
	}

	// Commit before publishing: optimistic on sink failure.
	committed := merged.Clone()
	ds.lastValue = &committed
	ds.lastPublish = now
	if source == SourcePush {
		ds.lastPushUpdate = now
	}
	ds.mu.Unlock()

	e.publish(merged, source)
	return DecisionPublished
}

// publish serialises the record and sends it to the sink.
// Failures are logged at the call site and otherwise swallowed.
func (e *Engine) publish(rec Record, source Source) {
	topic := e.topics.DeviceState(rec.Type.TopicSegment(), rec.DeviceID)

	payload, err := json.Marshal(rec)
	if err != nil {
		e.logger.Error("encoding record", "device_id", rec.DeviceID, "error", err)
		return
	}

	if err := e.sink.Publish(topic, payload); err != nil {
		e.logger.Error("publish failed", "topic", topic, "error", err)
		return
	}

	name := rec.DeviceName
	if name == "" {
		name = shortID(rec.DeviceID)
	}
	if values := formatLogValues(rec.Attributes); values != "" {
		e.logger.Info("state published", "device", name, "values", values, "source", source)
	} else {
		e.logger.Info("state published", "device", name, "source", source)
	}
}

// mergeRecords overlays a partial delta on the device baseline.
//
// Delta attribute values win; baseline attributes absent from the delta are
// retained, which keeps repeated delivery of the same delta idempotent. The
// device type is fixed once resolved, so the baseline's type survives unless
// it was still unknown.
func mergeRecords(baseline, delta Record) Record {
	merged := baseline.Clone()
	merged.Timestamp = delta.Timestamp

	if merged.Type == DeviceTypeUnknown {
		merged.Type = delta.Type
	}
	if delta.DeviceName != "" {
		merged.DeviceName = delta.DeviceName
	}
	if delta.Room != "" {
		merged.Room = delta.Room
	}
	if merged.Attributes == nil {
		merged.Attributes = make(map[string]any, len(delta.Attributes))
	}
	for k, v := range delta.Attributes {
		merged.Attributes[k] = v
	}

	return merged
}

// shortID abbreviates a device id for log lines.
func shortID(id string) string {
	const max = 8
	if len(id) <= max {
		return id
	}
	return id[:max]
}

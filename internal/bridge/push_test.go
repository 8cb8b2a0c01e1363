package bridge

import (
	"testing"
	"time"

	"github.com/nerrad567/dirigera-bridge/internal/infrastructure/mqtt"
)

func testPushHandler(t *testing.T) (*PushHandler, *Store, *mockSink, *time.Time) {
	t.Helper()

	store := NewStore()
	sink := &mockSink{}
	engine := NewEngine(EngineOptions{
		Store:       store,
		Sink:        sink,
		Topics:      mqtt.Topics{Base: "dirigera"},
		DedupWindow: 5 * time.Second,
	})

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return now }

	normalizer := NewNormalizer(store)
	normalizer.now = func() time.Time { return now }

	return NewPushHandler(normalizer, engine, nil), store, sink, &now
}

func TestHandle_StateChangeEventPublished(t *testing.T) {
	handler, store, sink, _ := testPushHandler(t)

	handler.Handle([]byte(`{
		"id": "evt-1",
		"type": "deviceStateChanged",
		"data": {
			"id": "sensor-1",
			"attributes": {"isDetected": true}
		}
	}`))

	if sink.count() != 1 {
		t.Fatalf("sink received %d messages, want 1", sink.count())
	}
	if sink.last().topic != "dirigera/motion/sensor-1" {
		t.Errorf("topic = %q", sink.last().topic)
	}

	rec, ok := store.LastValue("sensor-1")
	if !ok {
		t.Fatal("expected state for sensor-1")
	}
	if rec.Attributes["is_detected"] != true {
		t.Errorf("is_detected = %v", rec.Attributes["is_detected"])
	}
}

func TestHandle_RedeliveredEventSuppressed(t *testing.T) {
	handler, _, sink, _ := testPushHandler(t)

	event := []byte(`{
		"id": "evt-1",
		"type": "deviceStateChanged",
		"data": {"id": "sensor-1", "attributes": {"isDetected": true}}
	}`)

	handler.Handle(event)
	handler.Handle(event)

	if sink.count() != 1 {
		t.Errorf("sink received %d messages, want 1 (re-delivery is idempotent)", sink.count())
	}
}

func TestHandle_IgnoresIrrelevantPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"malformed json", `{not json`},
		{"other event type", `{"id": "evt-1", "type": "sceneUpdated", "data": {"id": "scene-1"}}`},
		{"missing device id", `{"id": "evt-1", "type": "deviceStateChanged", "data": {"attributes": {"isOn": true}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, sink, _ := testPushHandler(t)
			handler.Handle([]byte(tt.payload))
			if sink.count() != 0 {
				t.Errorf("sink received %d messages, want 0", sink.count())
			}
		})
	}
}

func TestHandle_DeltaMergesOverPolledBaseline(t *testing.T) {
	handler, store, _, now := testPushHandler(t)

	// Baseline as a poll cycle would have left it.
	store.CacheType("light-1", DeviceTypeLight, Record{
		DeviceID:   "light-1",
		Type:       DeviceTypeLight,
		DeviceName: "Hall Light",
	})
	ds := store.device("light-1")
	full := Record{
		DeviceID:   "light-1",
		Type:       DeviceTypeLight,
		DeviceName: "Hall Light",
		Timestamp:  *now,
		Attributes: map[string]any{"is_on": true, "brightness": 80.0},
	}
	ds.lastValue = &full
	ds.lastPublish = now.Add(-time.Minute)

	handler.Handle([]byte(`{
		"id": "evt-2",
		"type": "deviceStateChanged",
		"data": {"id": "light-1", "attributes": {"lightLevel": 50}}
	}`))

	rec, ok := store.LastValue("light-1")
	if !ok {
		t.Fatal("expected state for light-1")
	}
	if rec.Type != DeviceTypeLight {
		t.Errorf("Type = %v, want cached light", rec.Type)
	}
	if rec.DeviceName != "Hall Light" {
		t.Errorf("DeviceName = %q, want backfilled Hall Light", rec.DeviceName)
	}
	if rec.Attributes["brightness"] != 50.0 {
		t.Errorf("brightness = %v, want 50.0", rec.Attributes["brightness"])
	}
	if rec.Attributes["is_on"] != true {
		t.Errorf("is_on = %v, want retained from baseline", rec.Attributes["is_on"])
	}
}

package bridge

import (
	"testing"
	"time"
)

func TestStore_LastValueAbsentBeforeFirstAdmission(t *testing.T) {
	store := NewStore()

	if _, ok := store.LastValue("never-seen"); ok {
		t.Error("LastValue() = ok for a device with no state")
	}
}

func TestStore_LastValueReturnsCopy(t *testing.T) {
	store := NewStore()

	ds := store.device("dev-1")
	ds.lastValue = &Record{
		DeviceID:   "dev-1",
		Type:       DeviceTypeOutlet,
		Attributes: map[string]any{"is_on": true},
	}

	got, ok := store.LastValue("dev-1")
	if !ok {
		t.Fatal("expected state for dev-1")
	}

	got.Attributes["is_on"] = false
	if ds.lastValue.Attributes["is_on"] != true {
		t.Error("mutating the returned record leaked into the store")
	}
}

func TestStore_DeviceReturnsSameEntry(t *testing.T) {
	store := NewStore()

	if store.device("dev-1") != store.device("dev-1") {
		t.Error("device() returned distinct entries for the same id")
	}
	if store.device("dev-1") == store.device("dev-2") {
		t.Error("device() returned the same entry for distinct ids")
	}
}

func TestStore_PollCycle(t *testing.T) {
	store := NewStore()

	if !store.LastPollCycle().IsZero() {
		t.Error("LastPollCycle() non-zero before any cycle")
	}

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.SetLastPollCycle(at)
	if !store.LastPollCycle().Equal(at) {
		t.Errorf("LastPollCycle() = %v, want %v", store.LastPollCycle(), at)
	}
}

func TestStore_CacheTypeFirstResolutionWins(t *testing.T) {
	store := NewStore()

	store.CacheType("dev-1", DeviceTypeLight, Record{DeviceID: "dev-1", DeviceName: "First"})
	store.CacheType("dev-1", DeviceTypeOutlet, Record{DeviceID: "dev-1", DeviceName: "Second"})

	got, ok := store.ResolveType("dev-1")
	if !ok || got != DeviceTypeLight {
		t.Errorf("ResolveType() = %v, %v; want light (first resolution is fixed)", got, ok)
	}

	// The baseline still refreshes even when the type is kept.
	baseline, ok := store.Baseline("dev-1")
	if !ok || baseline.DeviceName != "Second" {
		t.Errorf("Baseline().DeviceName = %q, want Second", baseline.DeviceName)
	}
}

func TestStore_ResolveTypeUnknownDevice(t *testing.T) {
	store := NewStore()

	got, ok := store.ResolveType("never-seen")
	if ok || got != DeviceTypeUnknown {
		t.Errorf("ResolveType() = %v, %v; want unknown, false", got, ok)
	}
}

func TestStore_BaselineReturnsCopy(t *testing.T) {
	store := NewStore()

	store.CacheType("dev-1", DeviceTypeLight, Record{
		DeviceID:   "dev-1",
		Attributes: map[string]any{"is_on": true},
	})

	baseline, _ := store.Baseline("dev-1")
	baseline.Attributes["is_on"] = false

	again, _ := store.Baseline("dev-1")
	if again.Attributes["is_on"] != true {
		t.Error("mutating the returned baseline leaked into the cache")
	}
}

func TestStore_KnownDevices(t *testing.T) {
	store := NewStore()

	if store.KnownDevices() != 0 {
		t.Errorf("KnownDevices() = %d, want 0", store.KnownDevices())
	}

	store.CacheType("a", DeviceTypeLight, Record{DeviceID: "a"})
	store.CacheType("b", DeviceTypeOutlet, Record{DeviceID: "b"})
	store.CacheType("a", DeviceTypeLight, Record{DeviceID: "a"})

	if store.KnownDevices() != 2 {
		t.Errorf("KnownDevices() = %d, want 2", store.KnownDevices())
	}
}

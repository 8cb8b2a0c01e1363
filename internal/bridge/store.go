package bridge

import (
	"sync"
	"time"
)

// deviceState is the per-device reconciliation state.
//
// The engine holds mu for the whole merge→compare→write sequence so two
// producers can never admit updates against the same stale baseline. The
// lock is never held across a sink call.
type deviceState struct {
	mu sync.Mutex

	// lastValue is the last admitted canonical record, nil before the
	// first admission.
	lastValue *Record

	// lastPublish is when lastValue was admitted.
	lastPublish time.Time

	// lastPushUpdate is when a push-sourced record was last admitted.
	// Zero if the device has no push history.
	lastPushUpdate time.Time
}

// typeEntry is a type cache entry: the device type fixed by a full snapshot
// plus the most recent full baseline record.
type typeEntry struct {
	deviceType DeviceType
	baseline   Record
}

// Store holds all shared bridge state: per-device reconciliation entries,
// the global poll cycle timestamp, and the device type cache.
//
// It is pure data with synchronised access; all merge and suppression
// decisions live in the Engine. State is in-memory only and lives for the
// process lifetime. Entries are created on first observation of a device id
// and never removed; with a fixed home device population that is a
// deliberate simplification, not a leak.
type Store struct {
	devicesMu sync.Mutex
	devices   map[string]*deviceState

	pollMu    sync.RWMutex
	pollCycle time.Time

	typesMu sync.RWMutex
	types   map[string]typeEntry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		devices: make(map[string]*deviceState),
		types:   make(map[string]typeEntry),
	}
}

// device returns the state entry for a device id, creating it on first
// observation. The entry's own mutex is not held on return.
func (s *Store) device(id string) *deviceState {
	s.devicesMu.Lock()
	defer s.devicesMu.Unlock()

	ds, ok := s.devices[id]
	if !ok {
		ds = &deviceState{}
		s.devices[id] = ds
	}
	return ds
}

// LastValue returns a copy of the last admitted record for a device.
func (s *Store) LastValue(id string) (Record, bool) {
	ds := s.device(id)
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.lastValue == nil {
		return Record{}, false
	}
	return ds.lastValue.Clone(), true
}

// LastPollCycle returns when the previous poll cycle completed.
// Zero before the first cycle finishes.
func (s *Store) LastPollCycle() time.Time {
	s.pollMu.RLock()
	defer s.pollMu.RUnlock()
	return s.pollCycle
}

// SetLastPollCycle records the completion time of a poll cycle.
// Called once at the end of every cycle, after all categories.
func (s *Store) SetLastPollCycle(t time.Time) {
	s.pollMu.Lock()
	s.pollCycle = t
	s.pollMu.Unlock()
}

// CacheType fixes a device's type and stores its latest full baseline.
// Only the poll path calls this: full snapshots are the authoritative type
// source, and the first resolved type wins over any later disagreement.
func (s *Store) CacheType(id string, deviceType DeviceType, baseline Record) {
	s.typesMu.Lock()
	defer s.typesMu.Unlock()

	if existing, ok := s.types[id]; ok && existing.deviceType != deviceType {
		// Type is fixed at first resolution; keep it, refresh the baseline.
		deviceType = existing.deviceType
	}
	s.types[id] = typeEntry{deviceType: deviceType, baseline: baseline.Clone()}
}

// ResolveType returns the cached device type, if any.
func (s *Store) ResolveType(id string) (DeviceType, bool) {
	s.typesMu.RLock()
	defer s.typesMu.RUnlock()

	entry, ok := s.types[id]
	if !ok {
		return DeviceTypeUnknown, false
	}
	return entry.deviceType, true
}

// Baseline returns a copy of the cached full baseline record, if any.
func (s *Store) Baseline(id string) (Record, bool) {
	s.typesMu.RLock()
	defer s.typesMu.RUnlock()

	entry, ok := s.types[id]
	if !ok {
		return Record{}, false
	}
	return entry.baseline.Clone(), true
}

// KnownDevices returns how many devices the type cache holds.
// Used for the poll cycle summary log.
func (s *Store) KnownDevices() int {
	s.typesMu.RLock()
	defer s.typesMu.RUnlock()
	return len(s.types)
}

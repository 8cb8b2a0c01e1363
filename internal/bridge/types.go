package bridge

import (
	"encoding/json"
	"maps"
	"reflect"
	"time"
)

// DeviceType classifies a device into one of the categories the bridge
// understands. Once resolved from a full snapshot it never changes for a
// given device id.
type DeviceType string

// DeviceType constants.
const (
	DeviceTypeEnvironmentSensor DeviceType = "environment_sensor"
	DeviceTypeMotionSensor      DeviceType = "motion_sensor"
	DeviceTypeOpenCloseSensor   DeviceType = "open_close_sensor"
	DeviceTypeLight             DeviceType = "light"
	DeviceTypeAirPurifier       DeviceType = "air_purifier"
	DeviceTypeOutlet            DeviceType = "outlet"
	DeviceTypeController        DeviceType = "controller"
	DeviceTypeUnknown           DeviceType = "unknown"
)

// TopicSegment returns the MQTT topic category segment for the type.
func (t DeviceType) TopicSegment() string {
	switch t {
	case DeviceTypeEnvironmentSensor:
		return "sensor"
	case DeviceTypeMotionSensor:
		return "motion"
	case DeviceTypeOpenCloseSensor:
		return "door"
	case DeviceTypeLight:
		return "light"
	case DeviceTypeAirPurifier:
		return "purifier"
	case DeviceTypeOutlet:
		return "outlet"
	case DeviceTypeController:
		return "controller"
	default:
		return "unknown"
	}
}

// Source identifies which feed produced a record.
type Source string

// Source constants.
const (
	// SourcePoll marks records built from full snapshots returned by the
	// periodic device listing.
	SourcePoll Source = "poll"

	// SourcePush marks records built from partial WebSocket deltas.
	SourcePush Source = "push"
)

// Record is the canonical device state record published to MQTT.
//
// Attributes holds only non-null canonical fields (temperature, is_on, ...).
// Timestamp is the capture time and is excluded from equality comparisons.
type Record struct {
	DeviceID   string
	Type       DeviceType
	Room       string
	DeviceName string
	Timestamp  time.Time
	Attributes map[string]any
}

// Clone returns an independent copy of the record.
// Attribute values are scalars after normalisation, so a shallow map copy
// is a full copy.
func (r Record) Clone() Record {
	cpy := r
	cpy.Attributes = maps.Clone(r.Attributes)
	return cpy
}

// ComparableEqual reports whether two records carry the same values,
// ignoring the capture timestamp.
func (r Record) ComparableEqual(other Record) bool {
	if r.DeviceID != other.DeviceID || r.Type != other.Type {
		return false
	}
	if r.Room != other.Room || r.DeviceName != other.DeviceName {
		return false
	}
	return attrsEqual(r.Attributes, other.Attributes)
}

// attrsEqual compares attribute maps by value. Values are normalised
// scalars (float64, bool, string), so reflect.DeepEqual is exact.
func attrsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// MarshalJSON serialises the record flat: identity fields and attributes at
// the same level, matching the payload shape downstream consumers expect.
// Optional fields (room, device_name) are omitted when empty.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Attributes)+5)
	for k, v := range r.Attributes {
		out[k] = v
	}
	out["device_id"] = r.DeviceID
	out["device_type"] = string(r.Type)
	out["timestamp"] = r.Timestamp.UTC().Format(time.RFC3339Nano)
	if r.Room != "" {
		out["room"] = r.Room
	}
	if r.DeviceName != "" {
		out["device_name"] = r.DeviceName
	}
	return json.Marshal(out)
}

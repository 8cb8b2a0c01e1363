package bridge

import (
	"math"
	"strings"
	"time"

	"github.com/nerrad567/dirigera-bridge/internal/dirigera"
)

// attributeNames maps the hub's raw camelCase attribute names to canonical
// record field names. The mapping is one-to-one; raw attributes without an
// entry are dropped.
var attributeNames = map[string]string{
	"currentTemperature":  "temperature",
	"currentRH":           "humidity",
	"currentPM25":         "pm25",
	"currentCO2":          "co2",
	"vocIndex":            "voc_index",
	"isDetected":          "is_detected",
	"isOpen":              "is_open",
	"batteryPercentage":   "battery_percentage",
	"isOn":                "is_on",
	"lightLevel":          "brightness",
	"colorTemperature":    "color_temperature",
	"colorHue":            "color_hue",
	"colorSaturation":     "color_saturation",
	"fanMode":             "fan_mode",
	"motorState":          "motor_state",
	"motorRuntime":        "motor_runtime",
	"filterAlarmStatus":   "filter_alarm",
	"filterElapsedTime":   "filter_elapsed_time",
	"filterLifetime":      "filter_lifetime",
	"currentActivePower":  "power",
	"currentAmps":         "current",
	"currentVoltage":      "voltage",
	"totalEnergyConsumed": "energy_total",
}

// snapshotAttributes is the fixed raw attribute set extracted from a full
// snapshot for each category. Attributes outside the set are ignored even
// when the hub reports them.
var snapshotAttributes = map[DeviceType][]string{
	DeviceTypeEnvironmentSensor: {"currentTemperature", "currentRH", "currentCO2", "currentPM25", "vocIndex"},
	DeviceTypeMotionSensor:      {"isDetected", "batteryPercentage"},
	DeviceTypeOpenCloseSensor:   {"isOpen", "batteryPercentage"},
	DeviceTypeLight:             {"isOn", "lightLevel", "colorTemperature", "colorHue", "colorSaturation"},
	DeviceTypeAirPurifier:       {"fanMode", "motorState", "motorRuntime", "currentPM25", "filterAlarmStatus", "filterElapsedTime", "filterLifetime"},
	DeviceTypeOutlet:            {"isOn", "currentActivePower", "currentAmps", "currentVoltage", "totalEnergyConsumed"},
	DeviceTypeController:        {"batteryPercentage", "isOn"},
}

// inferenceOrder is the key-presence type inference table for deltas whose
// device has never been seen in a full snapshot. Tested in order; the first
// category with any indicator key present wins. Controllers are absent on
// purpose: their delta attributes (battery, isOn) are too generic to probe.
var inferenceOrder = []struct {
	deviceType DeviceType
	keys       []string
}{
	{DeviceTypeAirPurifier, []string{"fanMode", "motorState", "filterAlarmStatus"}},
	{DeviceTypeEnvironmentSensor, []string{"currentTemperature", "currentCO2"}},
	{DeviceTypeMotionSensor, []string{"isDetected"}},
	{DeviceTypeOpenCloseSensor, []string{"isOpen"}},
	{DeviceTypeOutlet, []string{"currentActivePower", "currentAmps"}},
	{DeviceTypeLight, []string{"lightLevel", "colorTemperature"}},
}

// controllerIDSeparator splits a controller's base id from its sub-identity
// suffix (e.g. "ctrl123_1" reports button 1 of remote "ctrl123").
const controllerIDSeparator = "_"

// BaseDeviceID strips a controller sub-identity suffix, if any.
// Non-controller ids never contain the separator and pass through unchanged.
func BaseDeviceID(id string) string {
	if i := strings.LastIndex(id, controllerIDSeparator); i > 0 {
		return id[:i]
	}
	return id
}

// TypeResolver is the read side of the type cache the normaliser consults
// for delta records. Implemented by *Store.
type TypeResolver interface {
	// ResolveType returns the device type fixed by an earlier full snapshot.
	ResolveType(deviceID string) (DeviceType, bool)

	// Baseline returns the most recent full snapshot record for a device.
	Baseline(deviceID string) (Record, bool)
}

// Normalizer translates raw hub data into canonical records.
//
// Both paths are pure transformations except for the type cache lookup the
// delta path requires; the cache is injected so the normaliser itself holds
// no state.
type Normalizer struct {
	types TypeResolver

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewNormalizer creates a normaliser backed by the given type cache.
func NewNormalizer(types TypeResolver) *Normalizer {
	return &Normalizer{
		types: types,
		now:   time.Now,
	}
}

// Snapshot converts a raw full snapshot into a canonical record.
//
// The category is authoritative: it came from a category-specific listing
// call, so the device type is set explicitly, never inferred. Controller ids
// are folded to their base id. Missing attributes are omitted, never an
// error.
func (n *Normalizer) Snapshot(deviceType DeviceType, raw dirigera.Device) Record {
	id := raw.ID
	if deviceType == DeviceTypeController {
		id = BaseDeviceID(id)
	}

	name := raw.CustomName()
	if name == "" {
		name = "Unknown"
	}

	attrs := make(map[string]any)
	for _, rawKey := range snapshotAttributes[deviceType] {
		value, ok := raw.Attributes[rawKey]
		if !ok || value == nil {
			continue
		}
		attrs[attributeNames[rawKey]] = normalizeValue(attributeNames[rawKey], value)
	}

	return Record{
		DeviceID:   id,
		Type:       deviceType,
		Room:       raw.RoomName(),
		DeviceName: name,
		Timestamp:  n.now().UTC(),
		Attributes: attrs,
	}
}

// Delta converts a raw partial attribute delta into a canonical record.
//
// The device type is resolved from the type cache when the device has been
// seen in a full snapshot; otherwise it is inferred from which raw keys are
// present, in fixed priority order, falling back to unknown. When the cache
// resolves the device as a controller, the id is folded to its base form so
// push and poll records land on the same key.
//
// If the delta carries no customName and a cached baseline exists, the
// device name is backfilled from the baseline.
func (n *Normalizer) Delta(deviceID string, rawAttrs map[string]any) Record {
	id := deviceID
	deviceType, ok := n.types.ResolveType(id)
	if !ok {
		// Controllers report sub-identities over the push feed; the cache
		// is keyed by base id.
		if base := BaseDeviceID(id); base != id {
			if t, baseOK := n.types.ResolveType(base); baseOK && t == DeviceTypeController {
				deviceType, ok = t, true
				id = base
			}
		}
	}
	if !ok {
		deviceType = inferType(rawAttrs)
	} else if deviceType == DeviceTypeController {
		id = BaseDeviceID(id)
	}

	attrs := make(map[string]any)
	var name string
	for rawKey, value := range rawAttrs {
		if value == nil {
			continue
		}
		if rawKey == "customName" {
			if s, isString := value.(string); isString {
				name = s
			}
			continue
		}
		canonical, known := attributeNames[rawKey]
		if !known {
			continue
		}
		attrs[canonical] = normalizeValue(canonical, value)
	}

	if name == "" {
		if baseline, found := n.types.Baseline(id); found {
			name = baseline.DeviceName
		}
	}

	return Record{
		DeviceID:   id,
		Type:       deviceType,
		DeviceName: name,
		Timestamp:  n.now().UTC(),
		Attributes: attrs,
	}
}

// inferType guesses a device type from which raw keys a delta carries.
func inferType(rawAttrs map[string]any) DeviceType {
	for _, candidate := range inferenceOrder {
		for _, key := range candidate.keys {
			if _, ok := rawAttrs[key]; ok {
				return candidate.deviceType
			}
		}
	}
	return DeviceTypeUnknown
}

// normalizeValue applies the per-field rounding rules: temperature to 2
// decimals, colour hue and saturation to 4, everything else unrounded.
func normalizeValue(canonical string, value any) any {
	num, isNumber := value.(float64)
	if !isNumber {
		return value
	}
	switch canonical {
	case "temperature":
		return roundTo(num, 2)
	case "color_hue", "color_saturation":
		return roundTo(num, 4)
	default:
		return value
	}
}

// roundTo rounds half away from zero to the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}

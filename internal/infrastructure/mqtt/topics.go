package mqtt

import "fmt"

// Topics builds the bridge's MQTT topic names under a configurable base topic.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{Base: "dirigera"}
//	topic := topics.DeviceState("sensor", "abc-123")
//	// Returns: "dirigera/sensor/abc-123"
type Topics struct {
	// Base is the topic prefix, e.g. "dirigera".
	Base string
}

// DeviceState returns the state topic for a device.
//
// The category segment is one of: sensor, motion, door, light, purifier,
// outlet, controller, unknown.
//
// Example: dirigera/light/abc-123
func (t Topics) DeviceState(category, deviceID string) string {
	return fmt.Sprintf("%s/%s/%s", t.Base, category, deviceID)
}

// BridgeStatus returns the bridge's own status topic, used for the
// online/offline announcements and the Last Will message.
//
// Example: dirigera/bridge/status
func (t Topics) BridgeStatus() string {
	return fmt.Sprintf("%s/bridge/status", t.Base)
}

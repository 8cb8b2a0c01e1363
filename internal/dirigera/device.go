package dirigera

// Raw type/deviceType values as reported by the hub's REST API.
const (
	rawTypeLight       = "light"
	rawTypeOutlet      = "outlet"
	rawTypeAirPurifier = "airPurifier"
	rawTypeController  = "controller"

	rawDeviceTypeEnvironmentSensor = "environmentSensor"
	rawDeviceTypeMotionSensor      = "motionSensor"
	rawDeviceTypeOpenCloseSensor   = "openCloseSensor"
)

// Device is a raw device snapshot as returned by GET /v1/devices.
//
// Attributes is kept as a loose map: the hub reports a different camelCase
// attribute set per device category, and the normaliser picks the fields it
// understands. Unknown attributes are simply ignored.
type Device struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	DeviceType  string         `json:"deviceType"`
	IsReachable bool           `json:"isReachable"`
	Room        *Room          `json:"room,omitempty"`
	Attributes  map[string]any `json:"attributes"`
}

// Room is the room a device is assigned to on the hub.
type Room struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoomName returns the device's room name, or "" if unassigned.
func (d Device) RoomName() string {
	if d.Room == nil {
		return ""
	}
	return d.Room.Name
}

// CustomName returns the user-assigned device name, or "" if unset.
func (d Device) CustomName() string {
	if v, ok := d.Attributes["customName"].(string); ok {
		return v
	}
	return ""
}

// EventTypeDeviceStateChanged is the only WebSocket event type the bridge
// consumes; everything else (scene updates, hub status) is ignored.
const EventTypeDeviceStateChanged = "deviceStateChanged"

// Event is a raw WebSocket notification from the hub.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData carries the changed device's id and the partial attribute delta.
// Only attributes that actually changed are present.
type EventData struct {
	ID         string         `json:"id"`
	DeviceType string         `json:"deviceType"`
	Attributes map[string]any `json:"attributes"`
}

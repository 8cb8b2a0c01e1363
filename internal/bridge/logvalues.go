package bridge

import (
	"fmt"
	"strings"
)

// formatLogValues renders the interesting measurements of a record for the
// publish log line, e.g. "21.5°C, 40% RH, ON".
func formatLogValues(attrs map[string]any) string {
	var parts []string

	if v, ok := attrs["temperature"]; ok {
		parts = append(parts, fmt.Sprintf("%v°C", v))
	}
	if v, ok := attrs["humidity"]; ok {
		parts = append(parts, fmt.Sprintf("%v%% RH", v))
	}
	if v, ok := attrs["co2"]; ok {
		parts = append(parts, fmt.Sprintf("%v ppm CO2", v))
	}
	if v, ok := attrs["pm25"]; ok {
		parts = append(parts, fmt.Sprintf("%v µg/m³ PM2.5", v))
	}
	if v, ok := attrs["voc_index"]; ok {
		parts = append(parts, fmt.Sprintf("VOC %v", v))
	}
	if v, ok := attrs["is_on"].(bool); ok {
		parts = append(parts, onOff(v, "ON", "OFF"))
	}
	if v, ok := attrs["is_open"].(bool); ok {
		parts = append(parts, onOff(v, "OPEN", "CLOSED"))
	}
	if v, ok := attrs["is_detected"].(bool); ok {
		parts = append(parts, onOff(v, "MOTION", "clear"))
	}
	if v, ok := attrs["brightness"]; ok {
		parts = append(parts, fmt.Sprintf("%v%%", v))
	}
	if v, ok := attrs["power"]; ok {
		parts = append(parts, fmt.Sprintf("%vW", v))
	}
	if v, ok := attrs["battery_percentage"]; ok {
		parts = append(parts, fmt.Sprintf("battery %v%%", v))
	}

	return strings.Join(parts, ", ")
}

func onOff(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}

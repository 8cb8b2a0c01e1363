// Package mqtt wraps the Eclipse Paho client for the bridge's outbound needs.
//
// The bridge is a pure publisher: device state records go to
// {base_topic}/{category}/{device_id}, and the bridge's own availability is
// announced on {base_topic}/bridge/status with a Last Will message covering
// unexpected disconnects.
//
// # Features
//
//   - Connection management with auto-reconnect and exponential backoff
//   - Publish with validation, timeout, and payload size cap
//   - Online/offline status with LWT
//   - Optional connection state callbacks for logging
//
// # Usage
//
//	topics := mqtt.Topics{Base: cfg.Bridge.BaseTopic}
//	client, err := mqtt.Connect(cfg.MQTT, topics)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	err = client.PublishDefault(topics.DeviceState("sensor", id), payload)
package mqtt

// Package bridge reconciles the hub's two device feeds into one
// de-duplicated MQTT stream.
//
// The hub reports device state twice over: a WebSocket push feed delivers
// partial attribute deltas the moment they happen, and a periodic poll
// returns full per-category snapshots as a backup. Publishing both verbatim
// would double every update and let a stale snapshot overwrite fresher push
// data.
//
// Three pieces resolve this:
//
//   - Normalizer turns raw snapshots and deltas into one canonical record
//     shape with a resolved device type.
//   - Store holds the per-device baseline, publish timestamps, the poll
//     cycle clock, and the type cache.
//   - Engine merges each record against its baseline, suppresses duplicates
//     inside the dedup window, arbitrates poll-versus-push freshness, and
//     emits survivors to the sink.
//
// Poller and PushHandler are the two producers driving the engine from
// independent goroutines; admission is atomic per device id.
package bridge

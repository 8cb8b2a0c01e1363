// Package dirigera is the hub-facing boundary of the bridge.
//
// It provides the two feeds the reconciliation core consumes:
//
//   - Client: HTTPS REST access to the hub, with per-category device listing
//     calls used by the poll loop. A failed call is always a non-nil error,
//     never an empty result.
//   - Listener: the WebSocket event stream delivering partial attribute
//     deltas as they happen, with automatic reconnection.
//
// Both carry the raw hub schema (camelCase attribute maps); translation into
// the canonical record shape happens in the bridge package.
package dirigera

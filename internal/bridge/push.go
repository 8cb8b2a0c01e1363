package bridge

import (
	"encoding/json"

	"github.com/nerrad567/dirigera-bridge/internal/dirigera"
)

// PushHandler consumes raw WebSocket event payloads from the hub and feeds
// state changes into the engine.
//
// Handle is safe to invoke repeatedly for the same event: a reconnect can
// re-deliver the tail of a prior session, and the merge in the engine is
// idempotent. Handle never panics or returns; anything malformed is logged
// and dropped so the listener stays alive.
type PushHandler struct {
	normalizer *Normalizer
	engine     *Engine
	logger     Logger
}

// NewPushHandler creates a push handler.
func NewPushHandler(normalizer *Normalizer, engine *Engine, logger Logger) *PushHandler {
	if logger == nil {
		logger = noopLogger{}
	}
	return &PushHandler{
		normalizer: normalizer,
		engine:     engine,
		logger:     logger,
	}
}

// Handle processes one raw event payload.
// It satisfies dirigera.EventHandler.
func (h *PushHandler) Handle(payload []byte) {
	var event dirigera.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Error("decoding event", "error", err)
		return
	}

	if event.Type != dirigera.EventTypeDeviceStateChanged {
		return
	}
	if event.Data.ID == "" {
		h.logger.Debug("event without device id ignored")
		return
	}

	h.logger.Debug("state change event",
		"device_id", event.Data.ID,
		"attributes", len(event.Data.Attributes),
	)

	rec := h.normalizer.Delta(event.Data.ID, event.Data.Attributes)
	h.engine.Admit(rec, SourcePush)
}

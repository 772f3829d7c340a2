package dashboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ccwio/ccw/internal/eventbus"
)

// hookPayload is the envelope external processes (editor plugins, CLI
// wrappers, CI steps) POST to notify the dashboard of state it didn't learn
// about through a Session Store mutation. It is published onto the Event
// Bus verbatim; the hook endpoint does no validation beyond shape.
type hookPayload struct {
	Type      string         `json:"type"`
	SessionID string         `json:"sessionId,omitempty"`
	EntityID  string         `json:"entityId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// @Summary Publish an external state-change event
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/hook [post]
//
// handleHook is a fire-and-forget ingress: decode, publish, return 200.
// No downstream work happens synchronously, keeping the handler well under
// the p99 latency target even with many slow WebSocket subscribers, since
// Publish never blocks on them.
func (s *Server) handleHook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "ok"
	defer func() {
		hookDurationSeconds.Observe(time.Since(start).Seconds())
		hookRequestsTotal.WithLabelValues(status).Inc()
	}()

	var body hookPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "invalid_json"
		writeError(w, http.StatusBadRequest, "invalid_json", "failed to parse request body")
		return
	}
	if body.Type == "" {
		status = "validation_error"
		writeError(w, http.StatusBadRequest, "validation_error", "type is required")
		return
	}

	s.bus.Publish(eventbus.Event{
		Type:      eventbus.EventType(body.Type),
		SessionID: body.SessionID,
		EntityID:  body.EntityID,
		Payload:   body.Payload,
		Timestamp: time.Now(),
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"

	"github.com/ccwio/ccw/internal/cwlog"
)

// @Summary Subscribe to live Event Bus traffic
// @Param ticket query string false "single-use auth ticket"
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} map[string]string
// @Router /ws [get]
//
// handleWS upgrades to WebSocket and streams Event Bus traffic live. Auth is
// either a same-origin browser connection or a short-lived ?ticket= query
// param obtained from POST /api/ws/ticket, since browsers can't set an
// Authorization header on a WebSocket upgrade request.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ticketOK := false
	if ticket := r.URL.Query().Get("ticket"); ticket != "" {
		if !s.tickets.Redeem(ticket) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired ticket")
			return
		}
		ticketOK = true
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Without a ticket, the library's default origin check admits only
		// same-origin browser connections.
		InsecureSkipVerify: ticketOK,
	})
	if err != nil {
		cwlog.Log.Error("dashboard: ws accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	sub := s.bus.Subscribe()
	defer sub.Cancel()

	wsConnectionsActive.Inc()
	defer wsConnectionsActive.Dec()
	cwlog.Log.Info("dashboard: ws client connected")

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "server shutting down")
			return
		case evt, ok := <-sub.Events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "subscription closed")
				return
			}
			data, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				cwlog.Log.Debug("dashboard: ws write failed", "error", err)
				return
			}
		}
	}
}

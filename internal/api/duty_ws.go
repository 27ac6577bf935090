package api

import (
	"net/http"

	"go.uber.org/zap"
)

// handleDutyEventsWS streams duty status events over a websocket. An empty
// driverId subscribes to every driver.
func (s *Server) handleDutyEventsWS(w http.ResponseWriter, r *http.Request) {
	if s.broker == nil {
		writeProblem(w, http.StatusServiceUnavailable, "unavailable", "event broker not configured")
		return
	}
	driverID := r.URL.Query().Get("driverId")
	ch, cancel, err := s.broker.Subscribe(r.Context(), driverID)
	if err != nil {
		writeError(w, err)
		return
	}
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		return
	}
	defer conn.Close()
	defer cancel()

	// Reader only detects the peer going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for ev := range ch {
		if err := conn.WriteJSON(ev); err != nil {
			s.log.Debug("duty stream write failed", zap.String("driverId", driverID), zap.Error(err))
			return
		}
	}
}

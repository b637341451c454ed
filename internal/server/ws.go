package server

import (
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"starplay/internal/wshub"
)

// handleWS upgrades a dashboard connection and streams statistics
// updates to it until the client disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("[WS] Accept error: %v\n", err)
		return
	}

	client := &wshub.Client{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan []byte, 16),
	}
	s.Hub.Register(client)
	defer s.Hub.Unregister(client.ID)

	ctx := r.Context()
	go client.WritePump(ctx)

	// Seed the dashboard with the current numbers right away.
	s.Hub.BroadcastStats(s.computeStats())

	// Dashboards only listen; the read loop just detects close.
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
	}
}

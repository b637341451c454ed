package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"starplay/internal/analytics"
	"starplay/internal/db"
	"starplay/internal/events"
	"starplay/internal/feedback"
	"starplay/internal/games"
	"starplay/internal/session"
	"starplay/internal/wshub"
)

type Server struct {
	Sessions        *session.Manager
	Feedback        *feedback.Ledger
	Hub             *wshub.Hub
	Bus             *events.Bus
	DB              *db.DB // nil if no database configured
	LeaderboardSize int

	roundsMu sync.Mutex
	Rounds   *games.Generator
}

// computeStats builds a fresh aggregate over history plus the live
// session, if any.
func (s *Server) computeStats() analytics.GameStats {
	history := s.Sessions.Sessions()
	var current *session.Session
	if cur, ok := s.Sessions.Current(); ok {
		current = &cur
	}
	return analytics.Compute(history, current, time.Now(), s.LeaderboardSize)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Server] Encode response: %v\n", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

package server

import (
	"log"
	"net/http"
	"strconv"

	"starplay/internal/games"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "db_error",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerName string `json:"playerName"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	sess := s.Sessions.Start(req.PlayerName)
	log.Printf("[Session] Started session %s for %q\n", sess.ID, sess.PlayerName)
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.Sessions.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.Sessions.End()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	log.Printf("[Session] Ended session %s: score=%d engagement=%ds\n",
		sess.ID, sess.TotalScore, sess.EngagementTime)

	if s.DB != nil {
		if err := s.DB.ArchiveSession(sess); err != nil {
			log.Printf("[DB] ArchiveSession error: %v\n", err)
		}
	}

	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleUpdateScore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TotalScore int `json:"totalScore"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	// Set semantics: the caller supplies the cumulative running total.
	s.Sessions.UpdateScore(req.TotalScore)

	if sess, ok := s.Sessions.Current(); ok {
		writeJSON(w, http.StatusOK, sess)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAward is the incremental entry point the games use: it adds
// points to the session total on their behalf, applying the per-game
// score cap, then hands the pre-summed value to the session manager.
func (s *Server) handleAward(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Game      string `json:"game"`
		Points    int    `json:"points"`
		GameScore int    `json:"gameScore"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := games.ParseKind(req.Game); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Points < 0 {
		writeError(w, http.StatusBadRequest, "points must be non-negative")
		return
	}

	awarded := games.ClampAward(req.GameScore, req.Points)
	total, ok := s.Sessions.AddScore(awarded)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := struct {
		Awarded    int `json:"awarded"`
		TotalScore int `json:"totalScore"`
		GameScore  int `json:"gameScore"`
	}{
		Awarded:    awarded,
		TotalScore: total,
		GameScore:  req.GameScore + awarded,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGamePlayed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Game string `json:"game"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	kind, err := games.ParseKind(req.Game)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.Sessions.RecordGamePlayed(kind)

	if sess, ok := s.Sessions.Current(); ok {
		writeJSON(w, http.StatusOK, sess)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sessions.Sessions())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.computeStats())
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Feedback.List())
}

func (s *Server) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating     int    `json:"rating"`
		Comment    string `json:"comment"`
		PlayerName string `json:"playerName"`
		GameType   string `json:"gameType"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Comment == "" {
		writeError(w, http.StatusBadRequest, "comment must not be empty")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}
	var kind games.Kind
	if req.GameType != "" {
		k, err := games.ParseKind(req.GameType)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		kind = k
	}

	entry := s.Feedback.Submit(req.Rating, req.Comment, req.PlayerName, kind)

	if s.DB != nil {
		if err := s.DB.ArchiveFeedback(entry); err != nil {
			log.Printf("[DB] ArchiveFeedback error: %v\n", err)
		}
	}

	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Confirm {
		writeError(w, http.StatusBadRequest, "confirm must be true")
		return
	}

	s.Sessions.Clear()
	s.Feedback.Clear()
	log.Println("[Server] All local data cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGameRound(w http.ResponseWriter, r *http.Request) {
	kind, err := games.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	advanced := r.URL.Query().Get("advanced") == "1"
	level := 1
	if v := r.URL.Query().Get("level"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			level = n
		}
	}

	// Hold the generator lock only while drawing the round, not while
	// writing to a possibly slow client.
	var payload any
	s.roundsMu.Lock()
	switch kind {
	case games.KindMath:
		payload = s.Rounds.MathQuestion(advanced)
	case games.KindMemory:
		payload = s.Rounds.MemoryDeck(advanced)
	case games.KindColor:
		payload = struct {
			Sequence []string `json:"sequence"`
			Points   int      `json:"points"`
		}{
			Sequence: s.Rounds.ColorSequence(level),
			Points:   games.ColorPoints(level),
		}
	case games.KindWord:
		payload = s.Rounds.WordRound()
	}
	s.roundsMu.Unlock()

	writeJSON(w, http.StatusOK, payload)
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"

	"starplay/internal/analytics"
	"starplay/internal/events"
	"starplay/internal/feedback"
	"starplay/internal/games"
	"starplay/internal/session"
	"starplay/internal/storage"
	"starplay/internal/wshub"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	store := storage.NewMemStore()
	bus := events.NewBus()
	srv := &Server{
		Sessions:        session.NewManager(store, bus),
		Feedback:        feedback.NewLedger(store, bus),
		Hub:             wshub.NewHub(),
		Bus:             bus,
		Rounds:          games.NewSeededGenerator(1),
		LeaderboardSize: analytics.LeaderboardSize,
	}

	go func() {
		for range bus.StatsChanges {
			srv.Hub.BroadcastStats(srv.computeStats())
		}
	}()

	mux := http.NewServeMux()
	registerRoutes(mux, srv)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	_, ts := newTestServer(t)

	// Start
	resp := postJSON(t, ts.URL+"/api/session/start", map[string]string{"playerName": "Asha"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d, want 200", resp.StatusCode)
	}
	started := decodeBody[session.Session](t, resp)
	if started.PlayerName != "Asha" {
		t.Errorf("PlayerName = %q, want Asha", started.PlayerName)
	}

	// Play memory three times
	for i := 0; i < 3; i++ {
		resp = postJSON(t, ts.URL+"/api/session/game-played", map[string]string{"game": "memory"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("game-played status = %d, want 200", resp.StatusCode)
		}
		resp.Body.Close()
	}

	// Set the running total
	resp = postJSON(t, ts.URL+"/api/session/score", map[string]int{"totalScore": 30})
	cur := decodeBody[session.Session](t, resp)
	if cur.TotalScore != 30 {
		t.Errorf("TotalScore = %d, want 30", cur.TotalScore)
	}

	// End
	resp = postJSON(t, ts.URL+"/api/session/end", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("end status = %d, want 200", resp.StatusCode)
	}
	ended := decodeBody[session.Session](t, resp)
	if ended.GamesPlayed.Memory != 3 {
		t.Errorf("memory count = %d, want 3", ended.GamesPlayed.Memory)
	}
	if ended.TotalScore != 30 {
		t.Errorf("TotalScore = %d, want 30", ended.TotalScore)
	}
	if ended.EngagementTime < 0 {
		t.Errorf("EngagementTime = %d, want >= 0", ended.EngagementTime)
	}

	// History now holds exactly one session
	resp, err := http.Get(ts.URL + "/api/sessions")
	if err != nil {
		t.Fatal(err)
	}
	history := decodeBody[[]session.Session](t, resp)
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	if history[0].PlayerName != "Asha" {
		t.Errorf("history player = %q, want Asha", history[0].PlayerName)
	}
}

func TestEndWithoutSession(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/session/end", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}

func TestCurrentSession(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/session")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status with no session = %d, want 204", resp.StatusCode)
	}

	postJSON(t, ts.URL+"/api/session/start", map[string]string{"playerName": "Ravi"}).Body.Close()

	resp, err = http.Get(ts.URL + "/api/session")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	cur := decodeBody[session.Session](t, resp)
	if cur.PlayerName != "Ravi" {
		t.Errorf("PlayerName = %q, want Ravi", cur.PlayerName)
	}
}

func TestGamePlayed_RejectsUnknownKind(t *testing.T) {
	_, ts := newTestServer(t)
	postJSON(t, ts.URL+"/api/session/start", map[string]string{}).Body.Close()

	resp := postJSON(t, ts.URL+"/api/session/game-played", map[string]string{"game": "chess"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAward_AddsThroughSetContract(t *testing.T) {
	srv, ts := newTestServer(t)
	postJSON(t, ts.URL+"/api/session/start", map[string]string{"playerName": "Asha"}).Body.Close()

	resp := postJSON(t, ts.URL+"/api/session/award",
		map[string]any{"game": "math", "points": 5, "gameScore": 0})
	body := decodeBody[map[string]int](t, resp)
	if body["awarded"] != 5 || body["totalScore"] != 5 {
		t.Errorf("award response = %v", body)
	}

	resp = postJSON(t, ts.URL+"/api/session/award",
		map[string]any{"game": "math", "points": 8, "gameScore": 5})
	body = decodeBody[map[string]int](t, resp)
	if body["totalScore"] != 13 {
		t.Errorf("totalScore = %d, want 13", body["totalScore"])
	}

	cur, _ := srv.Sessions.Current()
	if cur.TotalScore != 13 {
		t.Errorf("session total = %d, want 13", cur.TotalScore)
	}
}

func TestAward_AppliesGameScoreCap(t *testing.T) {
	_, ts := newTestServer(t)
	postJSON(t, ts.URL+"/api/session/start", map[string]string{}).Body.Close()

	resp := postJSON(t, ts.URL+"/api/session/award",
		map[string]any{"game": "memory", "points": 15, "gameScore": 245})
	body := decodeBody[map[string]int](t, resp)
	if body["awarded"] != 5 {
		t.Errorf("awarded = %d, want 5 (capped)", body["awarded"])
	}
	if body["gameScore"] != 250 {
		t.Errorf("gameScore = %d, want 250", body["gameScore"])
	}
}

func TestStats_ZeroState(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatal(err)
	}
	stats := decodeBody[analytics.GameStats](t, resp)

	if stats.TotalSessions != 0 || stats.TotalUsers != 0 ||
		stats.TotalEngagementTime != 0 || stats.AverageSessionTime != 0 {
		t.Errorf("zero-state stats = %+v", stats)
	}
	if stats.GamePopularity.Total() != 0 {
		t.Errorf("GamePopularity = %+v, want all zero", stats.GamePopularity)
	}
	if len(stats.HighScores) != 0 {
		t.Errorf("HighScores = %v, want empty", stats.HighScores)
	}
}

func TestStats_LeaderboardCappedAtTen(t *testing.T) {
	_, ts := newTestServer(t)

	for i := 1; i <= 15; i++ {
		postJSON(t, ts.URL+"/api/session/start",
			map[string]string{"playerName": fmt.Sprintf("P%02d", i)}).Body.Close()
		postJSON(t, ts.URL+"/api/session/score", map[string]int{"totalScore": i * 10}).Body.Close()
		postJSON(t, ts.URL+"/api/session/end", nil).Body.Close()
	}

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatal(err)
	}
	stats := decodeBody[analytics.GameStats](t, resp)

	if stats.TotalSessions != 15 {
		t.Errorf("TotalSessions = %d, want 15", stats.TotalSessions)
	}
	if len(stats.HighScores) != 10 {
		t.Fatalf("HighScores length = %d, want 10", len(stats.HighScores))
	}
	if stats.HighScores[0].Score != 150 {
		t.Errorf("top score = %d, want 150", stats.HighScores[0].Score)
	}
	for i := 1; i < 10; i++ {
		if stats.HighScores[i].Score > stats.HighScores[i-1].Score {
			t.Error("leaderboard not sorted descending")
		}
	}
}

func TestFeedbackOverHTTP(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/feedback",
		map[string]any{"rating": 5, "comment": "so fun!", "playerName": "Asha", "gameType": "word"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit status = %d, want 200", resp.StatusCode)
	}
	entry := decodeBody[feedback.Feedback](t, resp)
	if entry.Rating != 5 || entry.GameType != "word" {
		t.Errorf("entry = %+v", entry)
	}

	resp, err := http.Get(ts.URL + "/api/feedback")
	if err != nil {
		t.Fatal(err)
	}
	list := decodeBody[[]feedback.Feedback](t, resp)
	if len(list) != 1 {
		t.Fatalf("feedback length = %d, want 1", len(list))
	}
}

func TestFeedback_Validation(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"empty comment", map[string]any{"rating": 4, "comment": ""}},
		{"rating too low", map[string]any{"rating": 0, "comment": "meh"}},
		{"rating too high", map[string]any{"rating": 6, "comment": "wow"}},
		{"bad game type", map[string]any{"rating": 4, "comment": "ok", "gameType": "chess"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/feedback", tc.body)
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestClearAll(t *testing.T) {
	srv, ts := newTestServer(t)

	postJSON(t, ts.URL+"/api/session/start", map[string]string{"playerName": "Asha"}).Body.Close()
	postJSON(t, ts.URL+"/api/session/end", nil).Body.Close()
	postJSON(t, ts.URL+"/api/feedback", map[string]any{"rating": 5, "comment": "hi"}).Body.Close()

	// Refused without confirmation
	resp := postJSON(t, ts.URL+"/api/admin/clear", map[string]bool{"confirm": false})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unconfirmed clear status = %d, want 400", resp.StatusCode)
	}
	if len(srv.Sessions.Sessions()) != 1 {
		t.Fatal("unconfirmed clear must not wipe data")
	}

	resp = postJSON(t, ts.URL+"/api/admin/clear", map[string]bool{"confirm": true})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("clear status = %d, want 204", resp.StatusCode)
	}

	stats := srv.computeStats()
	if stats.TotalSessions != 0 || stats.TotalUsers != 0 || len(stats.HighScores) != 0 {
		t.Errorf("stats after clear = %+v, want zero state", stats)
	}
	if len(srv.Feedback.List()) != 0 {
		t.Error("feedback should be empty after clear")
	}
}

func TestGameRounds(t *testing.T) {
	_, ts := newTestServer(t)

	t.Run("math", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/games/math/round")
		if err != nil {
			t.Fatal(err)
		}
		q := decodeBody[games.MathQuestion](t, resp)
		if len(q.Options) != 4 {
			t.Errorf("options = %d, want 4", len(q.Options))
		}
		if q.Points != games.MathPoints {
			t.Errorf("points = %d, want %d", q.Points, games.MathPoints)
		}
	})

	t.Run("math advanced", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/games/math/round?advanced=1")
		if err != nil {
			t.Fatal(err)
		}
		q := decodeBody[games.MathQuestion](t, resp)
		if q.Points != games.MathPointsAdvanced {
			t.Errorf("points = %d, want %d", q.Points, games.MathPointsAdvanced)
		}
	})

	t.Run("memory", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/games/memory/round")
		if err != nil {
			t.Fatal(err)
		}
		deck := decodeBody[[]games.MemoryCard](t, resp)
		if len(deck) != 12 {
			t.Errorf("deck size = %d, want 12", len(deck))
		}
	})

	t.Run("color", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/games/color/round?level=3")
		if err != nil {
			t.Fatal(err)
		}
		round := decodeBody[struct {
			Sequence []string `json:"sequence"`
			Points   int      `json:"points"`
		}](t, resp)
		if len(round.Sequence) != 5 {
			t.Errorf("sequence length = %d, want 5", len(round.Sequence))
		}
		if round.Points != 15 {
			t.Errorf("points = %d, want 15", round.Points)
		}
	})

	t.Run("word", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/games/word/round")
		if err != nil {
			t.Fatal(err)
		}
		round := decodeBody[games.WordRound](t, resp)
		if len(round.Options) != 4 {
			t.Errorf("options = %d, want 4", len(round.Options))
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/games/chess/round")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestGameRounds_ConcurrentRequestsComplete(t *testing.T) {
	_, ts := newTestServer(t)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Get(ts.URL + "/api/games/math/round")
			if err != nil {
				errs <- err
				return
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				errs <- fmt.Errorf("status = %d, want 200", resp.StatusCode)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestAward_ConcurrentRequestsAllLand(t *testing.T) {
	srv, ts := newTestServer(t)
	postJSON(t, ts.URL+"/api/session/start", map[string]string{"playerName": "Asha"}).Body.Close()

	body := []byte(`{"game":"word","points":8,"gameScore":0}`)
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Post(ts.URL+"/api/session/award", "application/json", bytes.NewReader(body))
			if err != nil {
				errs <- err
				return
			}
			resp.Body.Close()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	cur, _ := srv.Sessions.Current()
	if cur.TotalScore != 160 {
		t.Errorf("TotalScore = %d, want 160 (no lost awards)", cur.TotalScore)
	}
}

func TestWS_ReceivesStats(t *testing.T) {
	_, ts := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// The server seeds new connections with the current stats.
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg wshub.StatsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != "stats" {
		t.Errorf("message type = %q, want stats", msg.Type)
	}
	if msg.Stats.TotalSessions != 0 {
		t.Errorf("TotalSessions = %d, want 0", msg.Stats.TotalSessions)
	}
}

func TestInvalidJSONBody(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/session/start", "application/json",
		strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

package server

import (
	"fmt"
	"log"
	"net/http"

	"starplay/internal/config"
	"starplay/internal/db"
	"starplay/internal/events"
	"starplay/internal/feedback"
	"starplay/internal/games"
	"starplay/internal/session"
	"starplay/internal/storage"
	"starplay/internal/wshub"
)

func Run() error {
	cfg := config.Load()

	store, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening file store: %w", err)
	}

	bus := events.NewBus()
	srv := &Server{
		Sessions:        session.NewManager(store, bus),
		Feedback:        feedback.NewLedger(store, bus),
		Hub:             wshub.NewHub(),
		Bus:             bus,
		Rounds:          games.NewGenerator(),
		LeaderboardSize: cfg.LeaderboardSize,
	}

	// Optional database connection
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Printf("[DB] Failed to connect: %v (running without database)\n", err)
		} else {
			if err := database.Migrate(); err != nil {
				log.Printf("[DB] Migration failed: %v\n", err)
			}
			srv.DB = database
			log.Println("[DB] Database connected and migrations applied")
		}
	} else {
		log.Println("[DB] DATABASE_URL not set, running without database")
	}

	// Push fresh stats to connected dashboards whenever state changes.
	go func() {
		for range bus.StatsChanges {
			srv.Hub.BroadcastStats(srv.computeStats())
		}
	}()

	mux := http.NewServeMux()
	registerRoutes(mux, srv)

	addr := "0.0.0.0:" + cfg.Port
	fmt.Printf("Server listening on http://localhost:%s\n", cfg.Port)
	return http.ListenAndServe(addr, mux)
}

func registerRoutes(mux *http.ServeMux, srv *Server) {
	mux.HandleFunc("POST /api/session/start", srv.handleStartSession)
	mux.HandleFunc("GET /api/session", srv.handleCurrentSession)
	mux.HandleFunc("POST /api/session/end", srv.handleEndSession)
	mux.HandleFunc("POST /api/session/score", srv.handleUpdateScore)
	mux.HandleFunc("POST /api/session/award", srv.handleAward)
	mux.HandleFunc("POST /api/session/game-played", srv.handleGamePlayed)
	mux.HandleFunc("GET /api/sessions", srv.handleSessions)
	mux.HandleFunc("GET /api/stats", srv.handleStats)
	mux.HandleFunc("GET /api/feedback", srv.handleListFeedback)
	mux.HandleFunc("POST /api/feedback", srv.handleSubmitFeedback)
	mux.HandleFunc("POST /api/admin/clear", srv.handleClearAll)
	mux.HandleFunc("GET /api/games/{kind}/round", srv.handleGameRound)
	mux.HandleFunc("GET /ws", srv.handleWS)
	mux.HandleFunc("GET /health", srv.handleHealth)
}

package db

import (
	"fmt"
	"time"

	"starplay/internal/session"
)

// ArchiveSession mirrors a completed session. Idempotent on the
// session ID so a retried archive does not duplicate rows.
func (d *DB) ArchiveSession(s session.Session) error {
	_, err := d.conn.Exec(`
		INSERT INTO sessions (id, player_name, started_at, ended_at, total_score,
			memory_plays, color_plays, math_plays, word_plays, engagement_secs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`, s.ID, s.PlayerName, time.UnixMilli(s.StartTime), time.UnixMilli(s.EndTime), s.TotalScore,
		s.GamesPlayed.Memory, s.GamesPlayed.Color, s.GamesPlayed.Math, s.GamesPlayed.Word, s.EngagementTime)
	if err != nil {
		return fmt.Errorf("archiving session: %w", err)
	}
	return nil
}

// SessionCount reports how many sessions have been archived.
func (d *DB) SessionCount() (int, error) {
	var count int
	if err := d.conn.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return count, nil
}

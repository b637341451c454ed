package db

import (
	"database/sql"
	"fmt"
	"time"

	"starplay/internal/feedback"
)

// ArchiveFeedback mirrors a submitted feedback entry.
func (d *DB) ArchiveFeedback(f feedback.Feedback) error {
	gameType := sql.NullString{String: f.GameType, Valid: f.GameType != ""}
	_, err := d.conn.Exec(`
		INSERT INTO feedback (id, player_name, rating, comment, submitted_at, game_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, f.ID, f.PlayerName, f.Rating, f.Comment, time.UnixMilli(f.Timestamp), gameType)
	if err != nil {
		return fmt.Errorf("archiving feedback: %w", err)
	}
	return nil
}

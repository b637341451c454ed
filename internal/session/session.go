package session

import (
	"time"

	"starplay/internal/games"
)

// Session is one continuous play visit. Timestamps are epoch
// milliseconds; EndTime stays zero while the session is active.
type Session struct {
	ID             string           `json:"id"`
	PlayerName     string           `json:"playerName"`
	StartTime      int64            `json:"startTime"`
	EndTime        int64            `json:"endTime,omitempty"`
	TotalScore     int              `json:"totalScore"`
	GamesPlayed    games.PlayCounts `json:"gamesPlayed"`
	EngagementTime int              `json:"engagementTime"`
}

func (s Session) Active() bool {
	return s.EndTime == 0
}

// LiveEngagement is the session's duration in whole seconds measured
// against now. Used for active sessions, whose stored EngagementTime is
// only frozen at end.
func (s Session) LiveEngagement(now time.Time) int {
	secs := (now.UnixMilli() - s.StartTime) / 1000
	if secs < 0 {
		return 0
	}
	return int(secs)
}

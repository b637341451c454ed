package analytics

import (
	"sort"
	"time"

	"starplay/internal/session"
)

// dateLayout mirrors the short date shown on the dashboard leaderboard.
const dateLayout = "1/2/2006"

// Compute derives aggregate statistics from completed sessions plus, if
// present, the active session. The active session contributes a growing
// engagement time measured against now, so long-running sessions are
// counted before they end. Pure: inputs are not mutated.
func Compute(history []session.Session, current *session.Session, now time.Time, limit int) GameStats {
	if limit <= 0 {
		limit = LeaderboardSize
	}

	all := make([]session.Session, 0, len(history)+1)
	all = append(all, history...)
	if current != nil {
		live := *current
		live.EngagementTime = live.LiveEngagement(now)
		all = append(all, live)
	}

	stats := GameStats{
		TotalSessions: len(all),
		HighScores:    []HighScore{},
	}

	players := make(map[string]bool)
	for _, s := range all {
		players[s.PlayerName] = true
		stats.TotalEngagementTime += s.EngagementTime
		stats.GamePopularity = stats.GamePopularity.Add(s.GamesPlayed)
	}
	stats.TotalUsers = len(players)
	if len(all) > 0 {
		stats.AverageSessionTime = float64(stats.TotalEngagementTime) / float64(len(all))
	}

	scores := make([]HighScore, len(all))
	for i, s := range all {
		scores[i] = HighScore{
			PlayerName: s.PlayerName,
			Score:      s.TotalScore,
			Date:       time.UnixMilli(s.StartTime).Format(dateLayout),
		}
	}
	// Descending by score; ties keep their original relative order.
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	if len(scores) > limit {
		scores = scores[:limit]
	}
	stats.HighScores = scores

	return stats
}

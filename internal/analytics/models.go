package analytics

import "starplay/internal/games"

// LeaderboardSize is the high-score cutoff.
const LeaderboardSize = 10

type HighScore struct {
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
	Date       string `json:"date"`
}

type GameStats struct {
	TotalSessions       int              `json:"totalSessions"`
	TotalUsers          int              `json:"totalUsers"`
	TotalEngagementTime int              `json:"totalEngagementTime"`
	AverageSessionTime  float64          `json:"averageSessionTime"`
	GamePopularity      games.PlayCounts `json:"gamePopularity"`
	HighScores          []HighScore      `json:"highScores"`
}

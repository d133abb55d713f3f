package dto

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type StartAttemptRequest struct {
	GameType string     `json:"game_type" binding:"required,oneof=memory logic attention reaction"`
	PuzzleID *uuid.UUID `json:"puzzle_id"`
}

type FinishAttemptRequest struct {
	Success    *bool             `json:"success" binding:"required"`
	Moves      *int              `json:"moves" binding:"required,min=0"`
	DurationMs *int              `json:"duration_ms" binding:"required,min=0"`
	Score      *int              `json:"score" binding:"omitempty,min=0"`
	Meta       datatypes.JSONMap `json:"meta"`
}

// CompleteAttemptRequest is the orchestrated finish: the attempt result plus
// the client's local calendar date, which drives the streak update.
type CompleteAttemptRequest struct {
	FinishAttemptRequest
	LocalDate string `json:"local_date" binding:"required,datetime=2006-01-02"`
}

type ListAttemptsFilter struct {
	GameType string `form:"game_type" binding:"omitempty,oneof=memory logic attention reaction"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	Limit    int    `form:"limit,default=20" binding:"min=1,max=50"`
}

type StatsFilter struct {
	GameType string `form:"game_type" binding:"omitempty,oneof=memory logic attention reaction"`
}

// GameStats aggregates a user's finished attempts for one game type.
// Aggregates are nil when the user has no finished attempts of that type.
type GameStats struct {
	GameType      string   `json:"game_type"`
	TotalAttempts int64    `json:"total_attempts"`
	AverageScore  *float64 `json:"average_score"`
	BestScore     *int     `json:"best_score"`
	BestTimeMs    *int     `json:"best_time_ms"`
	FewestMoves   *int     `json:"fewest_moves"`
}

type LeaderboardEntry struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url"`
	Position    int       `json:"position"`
	TotalScore  int64     `json:"total_score"`
	GamesPlayed int64     `json:"games_played"`
}

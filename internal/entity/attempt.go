package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Attempt is one play session, from start to finish. GameType and PuzzleID
// are set once at creation: PuzzleID is non-nil exactly when the game type
// requires a puzzle (reaction games carry none). The finish-time fields
// (FinishedAt, DurationMs, Moves, Success, Score) are written together in a
// single update and never rewritten; an attempt can be finished at most once.
type Attempt struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID         `gorm:"type:uuid;not null;index:idx_attempts_user" json:"user_id"`
	User       User              `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	GameType   GameType          `gorm:"size:20;not null;index" json:"game_type"`
	PuzzleID   *uuid.UUID        `gorm:"type:uuid;index" json:"puzzle_id,omitempty"`
	Puzzle     *Puzzle           `gorm:"foreignKey:PuzzleID" json:"puzzle,omitempty"`
	StartedAt  time.Time         `gorm:"not null" json:"started_at"`
	FinishedAt *time.Time        `gorm:"index" json:"finished_at,omitempty"`
	DurationMs *int              `json:"duration_ms,omitempty"`
	Moves      *int              `json:"moves,omitempty"`
	Success    *bool             `json:"success,omitempty"`
	Score      *int              `json:"score,omitempty"`
	Meta       datatypes.JSONMap `json:"meta,omitempty"`
}

func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Finished reports whether the attempt has reached its terminal state.
func (a *Attempt) Finished() bool {
	return a.FinishedAt != nil
}

// Succeeded reports whether the attempt finished successfully.
func (a *Attempt) Succeeded() bool {
	return a.Success != nil && *a.Success
}

package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GameType is the coarse category of a game. It is fixed at attempt
// creation time: puzzle-backed types carry a puzzle reference, the
// reaction type does not.
type GameType string

const (
	GameTypeMemory    GameType = "memory"
	GameTypeLogic     GameType = "logic"
	GameTypeAttention GameType = "attention"
	GameTypeReaction  GameType = "reaction"
)

// Valid reports whether t is one of the four known game types.
func (t GameType) Valid() bool {
	switch t {
	case GameTypeMemory, GameTypeLogic, GameTypeAttention, GameTypeReaction:
		return true
	}
	return false
}

// RequiresPuzzle reports whether attempts of this type must reference a puzzle.
func (t GameType) RequiresPuzzle() bool {
	return t != GameTypeReaction
}

// Puzzle is a generated board record. Generators live outside this service;
// they insert rows here and attempts reference them.
type Puzzle struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	GameType   GameType          `gorm:"size:20;not null;index" json:"game_type"`
	Name       string            `gorm:"size:50;not null;index" json:"name"` // e.g. "memory_match", "net", "sudoku"
	Difficulty string            `gorm:"size:20" json:"difficulty"`
	Board      datatypes.JSONMap `json:"board,omitempty"`
	CreatedAt  time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (p *Puzzle) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

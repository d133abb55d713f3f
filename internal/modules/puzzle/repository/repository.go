package repository

import (
	"context"
	"errors"

	"elepad.app/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PuzzleRepository interface {
	Create(ctx context.Context, puzzle *entity.Puzzle) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Puzzle, error)
	List(ctx context.Context, gameType *entity.GameType, limit, offset int) ([]entity.Puzzle, error)
	// ResolveGameName returns the puzzle's finer-grained game name
	// (e.g. "net", "memory_match"), or "" if the puzzle does not exist.
	ResolveGameName(ctx context.Context, id uuid.UUID) (string, error)
}

type puzzleRepository struct {
	db *gorm.DB
}

func NewPuzzleRepository(db *gorm.DB) PuzzleRepository {
	return &puzzleRepository{db: db}
}

func (r *puzzleRepository) Create(ctx context.Context, puzzle *entity.Puzzle) error {
	return r.db.WithContext(ctx).Create(puzzle).Error
}

func (r *puzzleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Puzzle, error) {
	var puzzle entity.Puzzle
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&puzzle).Error
	if err != nil {
		return nil, err
	}
	return &puzzle, nil
}

func (r *puzzleRepository) List(ctx context.Context, gameType *entity.GameType, limit, offset int) ([]entity.Puzzle, error) {
	var puzzles []entity.Puzzle
	q := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Offset(offset)
	if gameType != nil {
		q = q.Where("game_type = ?", *gameType)
	}
	err := q.Find(&puzzles).Error
	return puzzles, err
}

func (r *puzzleRepository) ResolveGameName(ctx context.Context, id uuid.UUID) (string, error) {
	var name string
	err := r.db.WithContext(ctx).Model(&entity.Puzzle{}).
		Where("id = ?", id).
		Pluck("name", &name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return name, err
}

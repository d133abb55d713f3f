package service

import (
	"context"
	"errors"

	"elepad.app/backend/internal/entity"
	puzzleDto "elepad.app/backend/internal/modules/puzzle/dto"
	puzzleRepo "elepad.app/backend/internal/modules/puzzle/repository"
	"elepad.app/backend/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PuzzleService interface {
	CreatePuzzle(ctx context.Context, req puzzleDto.CreatePuzzleRequest) (*entity.Puzzle, error)
	GetPuzzle(ctx context.Context, id uuid.UUID) (*entity.Puzzle, error)
	ListPuzzles(ctx context.Context, filter puzzleDto.ListPuzzlesFilter) ([]entity.Puzzle, error)
}

type puzzleService struct {
	repo puzzleRepo.PuzzleRepository
}

func NewPuzzleService(repo puzzleRepo.PuzzleRepository) PuzzleService {
	return &puzzleService{repo: repo}
}

func (s *puzzleService) CreatePuzzle(ctx context.Context, req puzzleDto.CreatePuzzleRequest) (*entity.Puzzle, error) {
	puzzle := &entity.Puzzle{
		GameType:   entity.GameType(req.GameType),
		Name:       req.Name,
		Difficulty: req.Difficulty,
		Board:      req.Board,
	}
	if err := s.repo.Create(ctx, puzzle); err != nil {
		return nil, apperror.Internal("failed to create puzzle", err)
	}
	return puzzle, nil
}

func (s *puzzleService) GetPuzzle(ctx context.Context, id uuid.UUID) (*entity.Puzzle, error) {
	puzzle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Internal("failed to load puzzle", err)
	}
	return puzzle, nil
}

func (s *puzzleService) ListPuzzles(ctx context.Context, filter puzzleDto.ListPuzzlesFilter) ([]entity.Puzzle, error) {
	var gameType *entity.GameType
	if filter.GameType != "" {
		gt := entity.GameType(filter.GameType)
		gameType = &gt
	}

	offset := (filter.Page - 1) * filter.Limit
	puzzles, err := s.repo.List(ctx, gameType, filter.Limit, offset)
	if err != nil {
		return nil, apperror.Internal("failed to list puzzles", err)
	}
	return puzzles, nil
}

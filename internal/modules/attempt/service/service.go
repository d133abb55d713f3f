package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"time"

	"elepad.app/backend/internal/entity"
	attemptDto "elepad.app/backend/internal/modules/attempt/dto"
	attemptRepo "elepad.app/backend/internal/modules/attempt/repository"
	puzzleRepo "elepad.app/backend/internal/modules/puzzle/repository"
	userRepo "elepad.app/backend/internal/modules/user/repository"
	"elepad.app/backend/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	leaderboardCacheKey = "leaderboard:global"
	leaderboardCacheTTL = 60 * time.Second
)

type AttemptService interface {
	StartAttempt(ctx context.Context, userID uuid.UUID, req attemptDto.StartAttemptRequest) (*entity.Attempt, error)
	FinishAttempt(ctx context.Context, attemptID, userID uuid.UUID, req attemptDto.FinishAttemptRequest) (*entity.Attempt, error)
	GetAttempt(ctx context.Context, attemptID, userID uuid.UUID) (*entity.Attempt, error)
	ListAttempts(ctx context.Context, userID uuid.UUID, filter attemptDto.ListAttemptsFilter) ([]entity.Attempt, error)
	GetStats(ctx context.Context, userID uuid.UUID, filter attemptDto.StatsFilter) ([]attemptDto.GameStats, error)
	GetLeaderboard(ctx context.Context, limit int) ([]attemptDto.LeaderboardEntry, error)
}

type attemptService struct {
	repo        attemptRepo.AttemptRepository
	puzzleRepo  puzzleRepo.PuzzleRepository
	userRepo    userRepo.UserRepository
	redisClient *redis.Client
}

func NewAttemptService(repo attemptRepo.AttemptRepository, puzzleRepo puzzleRepo.PuzzleRepository, userRepo userRepo.UserRepository, redisClient *redis.Client) AttemptService {
	return &attemptService{
		repo:        repo,
		puzzleRepo:  puzzleRepo,
		userRepo:    userRepo,
		redisClient: redisClient,
	}
}

// ComputeScore is the single scoring contract: 0 on failure, otherwise
// max(0, floor(1000 - durationMs/1000*5 - moves*10)). No other component
// may duplicate this formula.
func ComputeScore(success bool, durationMs, moves int) int {
	if !success {
		return 0
	}
	score := math.Floor(1000 - float64(durationMs)/1000*5 - float64(moves)*10)
	if score < 0 {
		return 0
	}
	return int(score)
}

func (s *attemptService) StartAttempt(ctx context.Context, userID uuid.UUID, req attemptDto.StartAttemptRequest) (*entity.Attempt, error) {
	gameType := entity.GameType(req.GameType)
	if !gameType.Valid() {
		return nil, apperror.ErrInvalidInput
	}

	attempt := &entity.Attempt{
		UserID:    userID,
		GameType:  gameType,
		StartedAt: time.Now(),
	}

	if gameType.RequiresPuzzle() {
		if req.PuzzleID == nil {
			return nil, apperror.ErrInvalidInput
		}
		puzzle, err := s.puzzleRepo.FindByID(ctx, *req.PuzzleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.ErrNotFound
			}
			return nil, apperror.Internal("failed to load puzzle", err)
		}
		if puzzle.GameType != gameType {
			return nil, apperror.ErrInvalidInput
		}
		attempt.PuzzleID = req.PuzzleID
	} else if req.PuzzleID != nil {
		// Reaction games never reference a puzzle
		return nil, apperror.ErrInvalidInput
	}

	if err := s.repo.Create(ctx, attempt); err != nil {
		return nil, apperror.Internal("failed to create attempt", err)
	}
	return attempt, nil
}

func (s *attemptService) FinishAttempt(ctx context.Context, attemptID, userID uuid.UUID, req attemptDto.FinishAttemptRequest) (*entity.Attempt, error) {
	attempt, err := s.repo.FindByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Internal("failed to load attempt", err)
	}

	if attempt.UserID != userID {
		return nil, apperror.ErrForbidden
	}
	if attempt.Finished() {
		return nil, apperror.New(400, "attempt already finished", apperror.ErrInvalidState)
	}

	score := 0
	if req.Score != nil {
		score = *req.Score
	} else {
		score = ComputeScore(*req.Success, *req.DurationMs, *req.Moves)
	}

	values := attemptRepo.FinishValues{
		FinishedAt: time.Now(),
		DurationMs: *req.DurationMs,
		Moves:      *req.Moves,
		Success:    *req.Success,
		Score:      score,
		Meta:       req.Meta,
	}

	finished, err := s.repo.Finish(ctx, attemptID, values)
	if err != nil {
		return nil, apperror.Internal("failed to finish attempt", err)
	}
	if !finished {
		// Lost a race against a concurrent finish of the same attempt
		return nil, apperror.New(400, "attempt already finished", apperror.ErrInvalidState)
	}

	updated, err := s.repo.FindByID(ctx, attemptID)
	if err != nil {
		return nil, apperror.Internal("failed to reload attempt", err)
	}
	return updated, nil
}

func (s *attemptService) GetAttempt(ctx context.Context, attemptID, userID uuid.UUID) (*entity.Attempt, error) {
	attempt, err := s.repo.FindByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Internal("failed to load attempt", err)
	}
	if attempt.UserID != userID {
		return nil, apperror.ErrForbidden
	}
	return attempt, nil
}

func (s *attemptService) ListAttempts(ctx context.Context, userID uuid.UUID, filter attemptDto.ListAttemptsFilter) ([]entity.Attempt, error) {
	var gameType *entity.GameType
	if filter.GameType != "" {
		gt := entity.GameType(filter.GameType)
		gameType = &gt
	}

	offset := (filter.Page - 1) * filter.Limit
	attempts, err := s.repo.ListByUser(ctx, userID, gameType, filter.Limit, offset)
	if err != nil {
		return nil, apperror.Internal("failed to list attempts", err)
	}
	return attempts, nil
}

func (s *attemptService) GetStats(ctx context.Context, userID uuid.UUID, filter attemptDto.StatsFilter) ([]attemptDto.GameStats, error) {
	var gameType *entity.GameType
	if filter.GameType != "" {
		gt := entity.GameType(filter.GameType)
		gameType = &gt
	}

	rows, err := s.repo.AggregateStats(ctx, userID, gameType)
	if err != nil {
		return nil, apperror.Internal("failed to aggregate stats", err)
	}

	byType := make(map[entity.GameType]attemptRepo.StatsRow, len(rows))
	for _, row := range rows {
		byType[row.GameType] = row
	}

	// Always return one entry per requested game type; unplayed types keep
	// nil aggregates instead of erroring on the empty set.
	requested := []entity.GameType{entity.GameTypeMemory, entity.GameTypeLogic, entity.GameTypeAttention, entity.GameTypeReaction}
	if gameType != nil {
		requested = []entity.GameType{*gameType}
	}

	stats := make([]attemptDto.GameStats, 0, len(requested))
	for _, gt := range requested {
		entry := attemptDto.GameStats{GameType: string(gt)}
		if row, ok := byType[gt]; ok {
			entry.TotalAttempts = row.Total
			entry.AverageScore = row.AvgScore
			entry.BestScore = row.BestScore
			entry.BestTimeMs = row.BestTimeMs
			entry.FewestMoves = row.FewestMoves
		}
		stats = append(stats, entry)
	}
	return stats, nil
}

func (s *attemptService) GetLeaderboard(ctx context.Context, limit int) ([]attemptDto.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	// Serve from cache when available
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, leaderboardCacheKey).Result(); err == nil {
			var entries []attemptDto.LeaderboardEntry
			if json.Unmarshal([]byte(cached), &entries) == nil && len(entries) >= limit {
				return entries[:limit], nil
			}
		}
	}

	rows, err := s.repo.TopScores(ctx, limit)
	if err != nil {
		return nil, apperror.Internal("failed to load leaderboard", err)
	}

	userIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		userIDs = append(userIDs, row.UserID)
	}

	names := make(map[uuid.UUID]entity.User, len(userIDs))
	if len(userIDs) > 0 {
		users, err := s.userRepo.FindByIDs(ctx, userIDs)
		if err != nil {
			return nil, apperror.Internal("failed to load leaderboard users", err)
		}
		for _, u := range users {
			names[u.ID] = u
		}
	}

	entries := make([]attemptDto.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entry := attemptDto.LeaderboardEntry{
			UserID:      row.UserID,
			Position:    i + 1,
			TotalScore:  row.TotalScore,
			GamesPlayed: row.GamesPlayed,
		}
		if u, ok := names[row.UserID]; ok {
			entry.DisplayName = u.DisplayName
			entry.AvatarURL = u.AvatarURL
		}
		entries = append(entries, entry)
	}

	if s.redisClient != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.redisClient.Set(ctx, leaderboardCacheKey, payload, leaderboardCacheTTL).Err(); err != nil {
				log.Printf("leaderboard cache write failed: %v", err)
			}
		}
	}

	return entries, nil
}

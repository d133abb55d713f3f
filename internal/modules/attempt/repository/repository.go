package repository

import (
	"context"
	"time"

	"elepad.app/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StatsRow is one per-game-type aggregate over finished attempts.
type StatsRow struct {
	GameType    entity.GameType
	Total       int64
	AvgScore    *float64
	BestScore   *int
	BestTimeMs  *int
	FewestMoves *int
}

// ScoreRow is one leaderboard line before user names are attached.
type ScoreRow struct {
	UserID      uuid.UUID
	TotalScore  int64
	GamesPlayed int64
}

// FinishValues are the terminal fields written together in one update.
type FinishValues struct {
	FinishedAt time.Time
	DurationMs int
	Moves      int
	Success    bool
	Score      int
	Meta       datatypes.JSONMap
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *entity.Attempt) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Attempt, error)
	// Finish atomically writes the terminal fields, guarded on
	// finished_at IS NULL. Returns false when the attempt was already
	// finished (zero rows matched).
	Finish(ctx context.Context, id uuid.UUID, values FinishValues) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, gameType *entity.GameType, limit, offset int) ([]entity.Attempt, error)
	// ListFinishedByUser returns all finished attempts of a user ordered by
	// finished_at descending, with the referenced puzzle preloaded.
	ListFinishedByUser(ctx context.Context, userID uuid.UUID) ([]entity.Attempt, error)
	AggregateStats(ctx context.Context, userID uuid.UUID, gameType *entity.GameType) ([]StatsRow, error)
	TopScores(ctx context.Context, limit int) ([]ScoreRow, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(ctx context.Context, attempt *entity.Attempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *attemptRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.WithContext(ctx).Preload("Puzzle").Where("id = ?", id).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) Finish(ctx context.Context, id uuid.UUID, values FinishValues) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.Attempt{}).
		Where("id = ? AND finished_at IS NULL", id).
		Updates(map[string]interface{}{
			"finished_at": values.FinishedAt,
			"duration_ms": values.DurationMs,
			"moves":       values.Moves,
			"success":     values.Success,
			"score":       values.Score,
			"meta":        values.Meta,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *attemptRepository) ListByUser(ctx context.Context, userID uuid.UUID, gameType *entity.GameType, limit, offset int) ([]entity.Attempt, error) {
	var attempts []entity.Attempt
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at desc").
		Limit(limit).
		Offset(offset)
	if gameType != nil {
		q = q.Where("game_type = ?", *gameType)
	}
	err := q.Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) ListFinishedByUser(ctx context.Context, userID uuid.UUID) ([]entity.Attempt, error) {
	var attempts []entity.Attempt
	err := r.db.WithContext(ctx).
		Preload("Puzzle").
		Where("user_id = ? AND finished_at IS NOT NULL", userID).
		Order("finished_at desc").
		Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) AggregateStats(ctx context.Context, userID uuid.UUID, gameType *entity.GameType) ([]StatsRow, error) {
	var rows []StatsRow
	q := r.db.WithContext(ctx).Model(&entity.Attempt{}).
		Select("game_type, COUNT(*) as total, AVG(score) as avg_score, MAX(score) as best_score, MIN(duration_ms) as best_time_ms, MIN(moves) as fewest_moves").
		Where("user_id = ? AND finished_at IS NOT NULL", userID).
		Group("game_type")
	if gameType != nil {
		q = q.Where("game_type = ?", *gameType)
	}
	err := q.Scan(&rows).Error
	return rows, err
}

func (r *attemptRepository) TopScores(ctx context.Context, limit int) ([]ScoreRow, error) {
	var rows []ScoreRow
	err := r.db.WithContext(ctx).Model(&entity.Attempt{}).
		Select("user_id, SUM(score) as total_score, COUNT(*) as games_played").
		Where("finished_at IS NOT NULL").
		Group("user_id").
		Order("total_score DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

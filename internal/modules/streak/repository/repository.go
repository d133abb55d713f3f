package repository

import (
	"context"
	"time"

	"elepad.app/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StreakRepository interface {
	// InsertHistory appends the played-on row. Returns false when the row
	// already existed; the unique index on (user_id, played_on) is the
	// race-safe guard against double day-credit.
	InsertHistory(ctx context.Context, history *entity.StreakHistory) (bool, error)
	// GetStreak returns nil (no error) when the user has no streak row yet.
	GetStreak(ctx context.Context, userID uuid.UUID) (*entity.UserStreak, error)
	UpsertStreak(ctx context.Context, streak *entity.UserStreak) error
	SetCurrentStreak(ctx context.Context, userID uuid.UUID, value int) error
	ListHistory(ctx context.Context, userID uuid.UUID, start, end *time.Time) ([]entity.StreakHistory, error)
}

type streakRepository struct {
	db *gorm.DB
}

func NewStreakRepository(db *gorm.DB) StreakRepository {
	return &streakRepository{db: db}
}

func (r *streakRepository) InsertHistory(ctx context.Context, history *entity.StreakHistory) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "played_on"}},
		DoNothing: true,
	}).Create(history)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *streakRepository) GetStreak(ctx context.Context, userID uuid.UUID) (*entity.UserStreak, error) {
	// Find with slice to avoid "record not found" log noise from First()
	var streaks []entity.UserStreak
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&streaks).Error
	if err != nil {
		return nil, err
	}
	if len(streaks) == 0 {
		return nil, nil
	}
	return &streaks[0], nil
}

func (r *streakRepository) UpsertStreak(ctx context.Context, streak *entity.UserStreak) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"current_streak", "longest_streak", "last_played_on", "updated_at",
		}),
	}).Create(streak).Error
}

func (r *streakRepository) SetCurrentStreak(ctx context.Context, userID uuid.UUID, value int) error {
	return r.db.WithContext(ctx).Model(&entity.UserStreak{}).
		Where("user_id = ?", userID).
		Update("current_streak", value).Error
}

func (r *streakRepository) ListHistory(ctx context.Context, userID uuid.UUID, start, end *time.Time) ([]entity.StreakHistory, error) {
	var history []entity.StreakHistory
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("played_on desc")
	if start != nil {
		q = q.Where("played_on >= ?", *start)
	}
	if end != nil {
		q = q.Where("played_on <= ?", *end)
	}
	err := q.Find(&history).Error
	return history, err
}

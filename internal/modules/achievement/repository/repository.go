package repository

import (
	"context"

	"elepad.app/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository interface {
	// ListByGameType returns catalog achievements for a game type ordered
	// by ascending points. A nil gameType returns the whole catalog.
	ListByGameType(ctx context.Context, gameType *entity.GameType) ([]entity.Achievement, error)
	FindByCode(ctx context.Context, code string) (*entity.Achievement, error)
	ListUnlocked(ctx context.Context, userID uuid.UUID, gameType *entity.GameType) ([]entity.UserAchievement, error)
	// InsertUnlock inserts the join row. Returns false when the row already
	// existed; the unique index on (user_id, achievement_id) makes this
	// safe under concurrent unlocks.
	InsertUnlock(ctx context.Context, unlock *entity.UserAchievement) (bool, error)
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) ListByGameType(ctx context.Context, gameType *entity.GameType) ([]entity.Achievement, error) {
	var achievements []entity.Achievement
	q := r.db.WithContext(ctx).Order("points asc")
	if gameType != nil {
		q = q.Where("game_type = ?", *gameType)
	}
	err := q.Find(&achievements).Error
	return achievements, err
}

func (r *achievementRepository) FindByCode(ctx context.Context, code string) (*entity.Achievement, error) {
	var achievement entity.Achievement
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&achievement).Error
	if err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (r *achievementRepository) ListUnlocked(ctx context.Context, userID uuid.UUID, gameType *entity.GameType) ([]entity.UserAchievement, error) {
	var unlocked []entity.UserAchievement
	q := r.db.WithContext(ctx).
		Preload("Achievement").
		Where("user_id = ?", userID)
	if gameType != nil {
		q = q.Joins("JOIN achievements ON achievements.id = user_achievements.achievement_id").
			Where("achievements.game_type = ?", *gameType)
	}
	err := q.Find(&unlocked).Error
	return unlocked, err
}

func (r *achievementRepository) InsertUnlock(ctx context.Context, unlock *entity.UserAchievement) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(unlock)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

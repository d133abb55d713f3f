package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Achievement is an admin-provisioned catalog entry. Condition holds the
// raw unlock rule as stored; it is decoded into a typed condition by the
// achievement service and unknown rule types simply never unlock.
type Achievement struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	GameType    GameType          `gorm:"size:20;not null;index" json:"game_type"`
	Code        string            `gorm:"size:60;uniqueIndex;not null" json:"code"`
	Title       string            `gorm:"size:100;not null" json:"title"`
	Description string            `gorm:"type:text" json:"description"`
	Icon        string            `gorm:"size:60" json:"icon"`
	Condition   datatypes.JSONMap `gorm:"not null" json:"condition"`
	Points      int               `gorm:"not null;default:0" json:"points"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

// UserAchievement records that a user unlocked an achievement. The unique
// index on (user_id, achievement_id) is the storage-level guard that makes
// unlocking idempotent even under concurrent requests.
type UserAchievement struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null;index:idx_user_achievement,unique,priority:1" json:"user_id"`
	User          User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AchievementID uint        `gorm:"not null;index:idx_user_achievement,unique,priority:2" json:"achievement_id"`
	Achievement   Achievement `gorm:"foreignKey:AchievementID;constraint:OnDelete:CASCADE" json:"achievement"`
	UnlockedAt    time.Time   `gorm:"autoCreateTime" json:"unlocked_at"`
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserStreak is one row per user. LastPlayedOn is a calendar date (the
// user's local day, not server time); the time component is always midnight UTC.
type UserStreak struct {
	UserID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	User          User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CurrentStreak int        `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak int        `gorm:"not null;default:0" json:"longest_streak"`
	LastPlayedOn  *time.Time `gorm:"type:date" json:"last_played_on,omitempty"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// StreakHistory is an append-only log of "played on this date". The unique
// index on (user_id, played_on) caps it at one row per user per day no
// matter how many attempts finish that day.
type StreakHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_streak_day,unique,priority:1" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PlayedOn  time.Time `gorm:"type:date;not null;index:idx_streak_day,unique,priority:2" json:"played_on"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"-"`
	EntityID   string    `gorm:"size:60" json:"entity_id"`            // achievement code, attempt id, ...
	EntityType string    `gorm:"size:50;not null" json:"entity_type"` // 'achievement', 'streak', 'memory'
	Type       string    `gorm:"size:50;not null" json:"type"`        // 'achievement_unlocked', 'streak_milestone', 'memory_added'
	Message    string    `gorm:"type:text" json:"message"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

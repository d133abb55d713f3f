package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Memory is one item in a family group's shared media library.
type Memory struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"group_id"`
	Group      FamilyGroup `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	UploaderID uuid.UUID   `gorm:"type:uuid;not null" json:"uploader_id"`
	Uploader   User        `gorm:"foreignKey:UploaderID" json:"-"`
	Title      string      `gorm:"size:150;not null" json:"title"`
	Caption    *string     `gorm:"type:text" json:"caption,omitempty"`
	MediaURL   string      `gorm:"type:text;not null" json:"media_url"`
	MediaType  string      `gorm:"size:20;not null" json:"media_type"` // 'image', 'audio', 'video'
	TakenAt    *time.Time  `json:"taken_at,omitempty"`
	CreatedAt  time.Time   `gorm:"autoCreateTime;index" json:"created_at"`
}

func (m *Memory) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

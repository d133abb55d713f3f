package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FamilyGroup struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	InviteCode string    `gorm:"size:12;uniqueIndex;not null" json:"invite_code"`
	OwnerID    uuid.UUID `gorm:"type:uuid;not null" json:"owner_id"`
	Owner      User      `gorm:"foreignKey:OwnerID" json:"-"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (g *FamilyGroup) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

type FamilyMember struct {
	ID       uint        `gorm:"primaryKey" json:"id"`
	GroupID  uuid.UUID   `gorm:"type:uuid;not null;index:idx_group_member,unique,priority:1" json:"group_id"`
	Group    FamilyGroup `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	UserID   uuid.UUID   `gorm:"type:uuid;not null;index:idx_group_member,unique,priority:2" json:"user_id"`
	User     User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	JoinedAt time.Time   `gorm:"autoCreateTime" json:"joined_at"`
}

package dto

import (
	"time"

	"elepad.app/backend/internal/entity"
)

// UnlockRequest grants an achievement directly. UserID defaults to the
// caller when omitted.
type UnlockRequest struct {
	Code   string `json:"code" binding:"required"`
	UserID string `json:"user_id" binding:"omitempty,uuid"`
}

type UnlockResponse struct {
	Achievement     entity.Achievement      `json:"achievement"`
	UserAchievement *entity.UserAchievement `json:"user_achievement,omitempty"`
	AlreadyUnlocked bool                    `json:"already_unlocked"`
}

type AchievementWithStatus struct {
	entity.Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

type ProgressResponse struct {
	TotalAchievements    int `json:"total_achievements"`
	UnlockedAchievements int `json:"unlocked_achievements"`
	TotalPoints          int `json:"total_points"`
	EarnedPoints         int `json:"earned_points"`
}

type ListFilter struct {
	GameType string `form:"game_type" binding:"omitempty,oneof=memory logic attention reaction"`
}

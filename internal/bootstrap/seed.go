package bootstrap

import (
	"log"

	"elepad.app/backend/internal/entity"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.FamilyGroup{},
		&entity.FamilyMember{},
		&entity.Puzzle{},
		&entity.Attempt{},
		&entity.Achievement{},
		&entity.UserAchievement{},
		&entity.UserStreak{},
		&entity.StreakHistory{},
		&entity.Memory{},
		&entity.Notification{},
	)
}

// SeedAchievements provisions the default catalog. Codes are stable keys:
// re-running the seed never duplicates or overwrites an existing entry, so
// admins can tune points or conditions without the seed reverting them.
func SeedAchievements(db *gorm.DB) error {
	defaults := []entity.Achievement{
		{
			GameType:    entity.GameTypeMemory,
			Code:        "memory_first_win",
			Title:       "First Match",
			Description: "Complete your first memory puzzle",
			Icon:        "🧩",
			Condition:   datatypes.JSONMap{"type": "first_completion"},
			Points:      10,
		},
		{
			GameType:    entity.GameTypeMemory,
			Code:        "memory_speedster",
			Title:       "Speedster",
			Description: "Finish a memory puzzle in under 30 seconds",
			Icon:        "⚡",
			Condition:   datatypes.JSONMap{"type": "time_under", "value": 30},
			Points:      25,
		},
		{
			GameType:    entity.GameTypeMemory,
			Code:        "memory_efficient",
			Title:       "Sharp Mind",
			Description: "Finish a memory puzzle in fewer than 20 moves",
			Icon:        "🎯",
			Condition:   datatypes.JSONMap{"type": "moves_under", "value": 20},
			Points:      25,
		},
		{
			GameType:    entity.GameTypeMemory,
			Code:        "memory_perfect_run",
			Title:       "Perfect Run",
			Description: "Under 45 seconds and under 25 moves in one game",
			Icon:        "🏆",
			Condition:   datatypes.JSONMap{"type": "combined", "time": 45, "moves": 25},
			Points:      50,
		},
		{
			GameType:    entity.GameTypeLogic,
			Code:        "logic_first_win",
			Title:       "Logical Start",
			Description: "Complete your first logic puzzle",
			Icon:        "💡",
			Condition:   datatypes.JSONMap{"type": "first_completion"},
			Points:      10,
		},
		{
			GameType:    entity.GameTypeLogic,
			Code:        "logic_streak_5",
			Title:       "On a Roll",
			Description: "Win five logic puzzles in a row",
			Icon:        "🔥",
			Condition:   datatypes.JSONMap{"type": "streak", "value": 5},
			Points:      40,
		},
		{
			GameType:    entity.GameTypeAttention,
			Code:        "attention_first_win",
			Title:       "Eagle Eye",
			Description: "Complete your first attention exercise",
			Icon:        "👁️",
			Condition:   datatypes.JSONMap{"type": "first_completion"},
			Points:      10,
		},
		{
			GameType:    entity.GameTypeAttention,
			Code:        "attention_streak_3",
			Title:       "Focused",
			Description: "Win three attention exercises in a row",
			Icon:        "🔥",
			Condition:   datatypes.JSONMap{"type": "streak", "value": 3},
			Points:      30,
		},
		{
			GameType:    entity.GameTypeReaction,
			Code:        "reaction_first_win",
			Title:       "Quick Draw",
			Description: "Complete your first reaction game",
			Icon:        "⚡",
			Condition:   datatypes.JSONMap{"type": "first_completion", "game": "reaction"},
			Points:      10,
		},
		{
			GameType:    entity.GameTypeReaction,
			Code:        "reaction_lightning",
			Title:       "Lightning Reflexes",
			Description: "React in under one second",
			Icon:        "🌩️",
			Condition:   datatypes.JSONMap{"type": "time_under", "value": 1, "game": "reaction"},
			Points:      50,
		},
	}

	for _, achievement := range defaults {
		var count int64
		if err := db.Model(&entity.Achievement{}).
			Where("code = ?", achievement.Code).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&achievement).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedDemoUser creates a known account for local development.
func SeedDemoUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", "demo@elepad.app").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Demo user already exists, skipping seed")
		return nil
	}

	demoUser := entity.User{
		DisplayName: "Demo",
		Email:       "demo@elepad.app",
	}

	if err := db.Create(&demoUser).Error; err != nil {
		return err
	}

	log.Println("✅ Demo user seeded successfully")
	log.Printf("   ID: %s", demoUser.ID)
	log.Println("   Email: demo@elepad.app")

	return nil
}

package service

import (
	"context"
	"testing"
	"time"

	"elepad.app/backend/internal/bootstrap"
	"elepad.app/backend/internal/entity"
	achievementDto "elepad.app/backend/internal/modules/achievement/dto"
	achievementRepo "elepad.app/backend/internal/modules/achievement/repository"
	attemptRepo "elepad.app/backend/internal/modules/attempt/repository"
	puzzleRepo "elepad.app/backend/internal/modules/puzzle/repository"
	"elepad.app/backend/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, bootstrap.Migrate(db))
	return db
}

func newTestService(t *testing.T) (AchievementService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewAchievementService(
		achievementRepo.NewAchievementRepository(db),
		attemptRepo.NewAttemptRepository(db),
		puzzleRepo.NewPuzzleRepository(db),
	)
	return svc, db
}

func createUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	user := entity.User{DisplayName: "Tester", Email: uuid.NewString() + "@example.com"}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func createAchievement(t *testing.T, db *gorm.DB, gameType entity.GameType, code string, condition datatypes.JSONMap, points int) entity.Achievement {
	t.Helper()
	achievement := entity.Achievement{
		GameType:  gameType,
		Code:      code,
		Title:     code,
		Condition: condition,
		Points:    points,
	}
	require.NoError(t, db.Create(&achievement).Error)
	return achievement
}

// createFinishedAttempt inserts a finished attempt directly; the finish
// pipeline itself is covered by the attempt module's tests.
func createFinishedAttempt(t *testing.T, db *gorm.DB, userID uuid.UUID, gameType entity.GameType, puzzleID *uuid.UUID, success bool, durationMs, moves int, finishedAt time.Time) uuid.UUID {
	t.Helper()
	score := 0
	attempt := entity.Attempt{
		UserID:     userID,
		GameType:   gameType,
		PuzzleID:   puzzleID,
		StartedAt:  finishedAt.Add(-time.Minute),
		FinishedAt: &finishedAt,
		DurationMs: &durationMs,
		Moves:      &moves,
		Success:    &success,
		Score:      &score,
	}
	require.NoError(t, db.Create(&attempt).Error)
	return attempt.ID
}

func TestCheckAndUnlockAchievements(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstCompletionUnlocksOnce", func(t *testing.T) {
		svc, db := newTestService(t)
		userID := createUser(t, db)
		first := createAchievement(t, db, entity.GameTypeReaction, "reaction_first_win",
			datatypes.JSONMap{"type": "first_completion"}, 10)

		attemptID := createFinishedAttempt(t, db, userID, entity.GameTypeReaction, nil, true, 800, 0, time.Now())

		unlocked, err := svc.CheckAndUnlockAchievements(ctx, userID, attemptID)
		require.NoError(t, err)
		require.Len(t, unlocked, 1)
		assert.Equal(t, first.Code, unlocked[0].Code)

		// A later completion is no longer the first
		second := createFinishedAttempt(t, db, userID, entity.GameTypeReaction, nil, true, 800, 0, time.Now().Add(time.Minute))
		unlocked, err = svc.CheckAndUnlockAchievements(ctx, userID, second)
		require.NoError(t, err)
		assert.Empty(t, unlocked)
	})

	t.Run("RepeatedCheckIsIdempotent", func(t *testing.T) {
		svc, db := newTestService(t)
		userID := createUser(t, db)
		createAchievement(t, db, entity.GameTypeReaction, "reaction_lightning",
			datatypes.JSONMap{"type": "time_under", "value": 1}, 50)

		attemptID := createFinishedAttempt(t, db, userID, entity.GameTypeReaction, nil, true, 800, 0, time.Now())

		unlocked, err := svc.CheckAndUnlockAchievements(ctx, userID, attemptID)
		require.NoError(t, err)
		require.Len(t, unlocked, 1)

		unlocked, err = svc.CheckAndUnlockAchievements(ctx, userID, attemptID)
		require.NoError(t, err)
		assert.Empty(t, unlocked)

		var count int64
		require.NoError(t, db.Model(&entity.UserAchievement{}).Where("user_id = ?", userID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("FailedAttemptUnlocksNothing", func(t *testing.T) {
		svc, db := newTestService(t)
		userID := createUser(t, db)
		createAchievement(t, db, entity.GameTypeReaction, "reaction_first_win",
			datatypes.JSONMap{"type": "first_completion"}, 10)

		attemptID := createFinishedAttempt(t, db, userID, entity.GameTypeReaction, nil, false, 800, 0, time.Now())

		unlocked, err := svc.CheckAndUnlockAchievements(ctx, userID, attemptID)
		require.NoError(t, err)
		assert.Empty(t, unlocked)
	})

	t.Run("StreakAcrossHistory", func(t *testing.T) {
		svc, db := newTestService(t)
		userID := createUser(t, db)
		createAchievement(t, db, entity.GameTypeReaction, "reaction_streak_3",
			datatypes.JSONMap{"type": "streak", "value": 3}, 30)

		now := time.Now()
		createFinishedAttempt(t, db, userID, entity.GameTypeReaction, nil, true, 800, 0, now.Add(-3*time.Hour))
		createFinishedAttempt(t, db, userID, entity.GameTypeReaction, nil, true, 800, 0, now.Add(-2*time.Hour))

		// A failure inside the run blocks the streak
		createFinishedAttempt(t, db, userID, entity.GameTypeReaction, nil, false, 800, 0, now.Add(-time.Hour))
		blocked := createFinishedAttempt(t, db, userID, entity.GameTypeReaction, nil, true, 800, 0, now)

		unlocked, err := svc.CheckAndUnlockAchievements(ctx, userID, blocked)
		require.NoError(t, err)
		assert.Empty(t, unlocked)

		// Two more wins complete a fresh run of three
		createFinishedAttempt(t, db, userID, entity.GameTypeReaction, nil, true, 800, 0, now.Add(time.Hour))
		third := createFinishedAttempt(t, db, userID, entity.GameTypeReaction, nil, true, 800, 0, now.Add(2*time.Hour))

		unlocked, err = svc.CheckAndUnlockAchievements(ctx, userID, third)
		require.NoError(t, err)
		require.Len(t, unlocked, 1)
		assert.Equal(t, "reaction_streak_3", unlocked[0].Code)
	})

	t.Run("GameBoundConditionFiltersByPuzzleName", func(t *testing.T) {
		svc, db := newTestService(t)
		userID := createUser(t, db)
		createAchievement(t, db, entity.GameTypeLogic, "sudoku_first_win",
			datatypes.JSONMap{"type": "first_completion", "game": "sudoku"}, 10)

		net := entity.Puzzle{GameType: entity.GameTypeLogic, Name: "net"}
		require.NoError(t, db.Create(&net).Error)

		attemptID := createFinishedAttempt(t, db, userID, entity.GameTypeLogic, &net.ID, true, 5000, 3, time.Now())

		// A net win never unlocks a sudoku-bound achievement
		unlocked, err := svc.CheckAndUnlockAchievements(ctx, userID, attemptID)
		require.NoError(t, err)
		assert.Empty(t, unlocked)
	})

	t.Run("UnknownConditionTypeIsSkipped", func(t *testing.T) {
		svc, db := newTestService(t)
		userID := createUser(t, db)
		createAchievement(t, db, entity.GameTypeReaction, "reaction_mystery",
			datatypes.JSONMap{"type": "total_play_time", "value": 3600}, 10)

		attemptID := createFinishedAttempt(t, db, userID, entity.GameTypeReaction, nil, true, 800, 0, time.Now())

		unlocked, err := svc.CheckAndUnlockAchievements(ctx, userID, attemptID)
		require.NoError(t, err)
		assert.Empty(t, unlocked)
	})

	t.Run("UnknownAttempt", func(t *testing.T) {
		svc, db := newTestService(t)
		userID := createUser(t, db)

		_, err := svc.CheckAndUnlockAchievements(ctx, userID, uuid.New())
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestUnlockAchievement(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	userID := createUser(t, db)
	createAchievement(t, db, entity.GameTypeMemory, "memory_first_win",
		datatypes.JSONMap{"type": "first_completion"}, 10)

	resp, err := svc.UnlockAchievement(ctx, userID, "memory_first_win")
	require.NoError(t, err)
	assert.False(t, resp.AlreadyUnlocked)
	require.NotNil(t, resp.UserAchievement)

	resp, err = svc.UnlockAchievement(ctx, userID, "memory_first_win")
	require.NoError(t, err)
	assert.True(t, resp.AlreadyUnlocked)
	assert.Nil(t, resp.UserAchievement)

	_, err = svc.UnlockAchievement(ctx, userID, "no_such_code")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListWithUnlockStatus(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	userID := createUser(t, db)

	createAchievement(t, db, entity.GameTypeMemory, "memory_first_win",
		datatypes.JSONMap{"type": "first_completion"}, 10)
	createAchievement(t, db, entity.GameTypeMemory, "memory_speedster",
		datatypes.JSONMap{"type": "time_under", "value": 30}, 25)

	_, err := svc.UnlockAchievement(ctx, userID, "memory_first_win")
	require.NoError(t, err)

	list, err := svc.ListWithUnlockStatus(ctx, userID, achievementDto.ListFilter{GameType: "memory"})
	require.NoError(t, err)
	require.Len(t, list, 2)

	byCode := make(map[string]achievementDto.AchievementWithStatus, len(list))
	for _, entry := range list {
		byCode[entry.Code] = entry
	}
	assert.True(t, byCode["memory_first_win"].Unlocked)
	assert.NotNil(t, byCode["memory_first_win"].UnlockedAt)
	assert.False(t, byCode["memory_speedster"].Unlocked)
}

func TestGetProgress(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	userID := createUser(t, db)

	t.Run("EmptyCatalog", func(t *testing.T) {
		progress, err := svc.GetProgress(ctx, userID, achievementDto.ListFilter{})
		require.NoError(t, err)
		assert.Zero(t, progress.TotalAchievements)
		assert.Zero(t, progress.TotalPoints)
		assert.Zero(t, progress.EarnedPoints)
	})

	t.Run("SumsPoints", func(t *testing.T) {
		createAchievement(t, db, entity.GameTypeMemory, "memory_first_win",
			datatypes.JSONMap{"type": "first_completion"}, 10)
		createAchievement(t, db, entity.GameTypeLogic, "logic_first_win",
			datatypes.JSONMap{"type": "first_completion"}, 15)

		_, err := svc.UnlockAchievement(ctx, userID, "memory_first_win")
		require.NoError(t, err)

		progress, err := svc.GetProgress(ctx, userID, achievementDto.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, 2, progress.TotalAchievements)
		assert.Equal(t, 1, progress.UnlockedAchievements)
		assert.Equal(t, 25, progress.TotalPoints)
		assert.Equal(t, 10, progress.EarnedPoints)
	})
}

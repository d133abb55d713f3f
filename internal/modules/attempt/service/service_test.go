package service

import (
	"context"
	"testing"

	"elepad.app/backend/internal/bootstrap"
	"elepad.app/backend/internal/entity"
	attemptDto "elepad.app/backend/internal/modules/attempt/dto"
	attemptRepo "elepad.app/backend/internal/modules/attempt/repository"
	puzzleRepo "elepad.app/backend/internal/modules/puzzle/repository"
	userRepo "elepad.app/backend/internal/modules/user/repository"
	"elepad.app/backend/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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
	// In-memory sqlite gives every connection its own database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, bootstrap.Migrate(db))
	return db
}

func newTestService(t *testing.T) (AttemptService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewAttemptService(
		attemptRepo.NewAttemptRepository(db),
		puzzleRepo.NewPuzzleRepository(db),
		userRepo.NewUserRepository(db),
		nil,
	)
	return svc, db
}

func createUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	user := entity.User{DisplayName: "Tester", Email: uuid.NewString() + "@example.com"}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func createPuzzle(t *testing.T, db *gorm.DB, gameType entity.GameType, name string) uuid.UUID {
	t.Helper()
	puzzle := entity.Puzzle{GameType: gameType, Name: name, Difficulty: "easy"}
	require.NoError(t, db.Create(&puzzle).Error)
	return puzzle.ID
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestComputeScore(t *testing.T) {
	// 1000 - 5000/1000*5 - 3*10 = 945
	assert.Equal(t, 945, ComputeScore(true, 5000, 3))

	// Failure always scores zero
	assert.Equal(t, 0, ComputeScore(false, 1000, 1))

	// Clamped at zero when the penalty exceeds the base
	assert.Equal(t, 0, ComputeScore(true, 300000, 100))

	// Fractional duration penalty floors the result: 1000 - 0.5 = 999.5 -> 999
	assert.Equal(t, 999, ComputeScore(true, 100, 0))

	assert.Equal(t, 1000, ComputeScore(true, 0, 0))
}

func TestStartAttempt(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	userID := createUser(t, db)
	puzzleID := createPuzzle(t, db, entity.GameTypeMemory, "memory_match")

	t.Run("PuzzleBacked", func(t *testing.T) {
		attempt, err := svc.StartAttempt(ctx, userID, attemptDto.StartAttemptRequest{
			GameType: "memory",
			PuzzleID: &puzzleID,
		})
		require.NoError(t, err)
		assert.Equal(t, entity.GameTypeMemory, attempt.GameType)
		require.NotNil(t, attempt.PuzzleID)
		assert.Equal(t, puzzleID, *attempt.PuzzleID)
		assert.False(t, attempt.Finished())
	})

	t.Run("ReactionWithoutPuzzle", func(t *testing.T) {
		attempt, err := svc.StartAttempt(ctx, userID, attemptDto.StartAttemptRequest{GameType: "reaction"})
		require.NoError(t, err)
		assert.Nil(t, attempt.PuzzleID)
	})

	t.Run("ReactionWithPuzzleRejected", func(t *testing.T) {
		_, err := svc.StartAttempt(ctx, userID, attemptDto.StartAttemptRequest{
			GameType: "reaction",
			PuzzleID: &puzzleID,
		})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	t.Run("MissingPuzzleRejected", func(t *testing.T) {
		_, err := svc.StartAttempt(ctx, userID, attemptDto.StartAttemptRequest{GameType: "memory"})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	t.Run("GameTypeMismatchRejected", func(t *testing.T) {
		_, err := svc.StartAttempt(ctx, userID, attemptDto.StartAttemptRequest{
			GameType: "logic",
			PuzzleID: &puzzleID,
		})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	t.Run("UnknownPuzzle", func(t *testing.T) {
		missing := uuid.New()
		_, err := svc.StartAttempt(ctx, userID, attemptDto.StartAttemptRequest{
			GameType: "memory",
			PuzzleID: &missing,
		})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestFinishAttempt(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	userID := createUser(t, db)
	otherID := createUser(t, db)
	puzzleID := createPuzzle(t, db, entity.GameTypeMemory, "memory_match")

	start := func(t *testing.T) uuid.UUID {
		attempt, err := svc.StartAttempt(ctx, userID, attemptDto.StartAttemptRequest{
			GameType: "memory",
			PuzzleID: &puzzleID,
		})
		require.NoError(t, err)
		return attempt.ID
	}

	finishReq := attemptDto.FinishAttemptRequest{
		Success:    boolPtr(true),
		Moves:      intPtr(3),
		DurationMs: intPtr(5000),
	}

	t.Run("ComputesScore", func(t *testing.T) {
		attemptID := start(t)
		finished, err := svc.FinishAttempt(ctx, attemptID, userID, finishReq)
		require.NoError(t, err)
		assert.True(t, finished.Finished())
		require.NotNil(t, finished.Score)
		assert.Equal(t, 945, *finished.Score)
	})

	t.Run("ClientScoreWins", func(t *testing.T) {
		attemptID := start(t)
		req := finishReq
		req.Score = intPtr(500)
		finished, err := svc.FinishAttempt(ctx, attemptID, userID, req)
		require.NoError(t, err)
		require.NotNil(t, finished.Score)
		assert.Equal(t, 500, *finished.Score)
	})

	t.Run("AtMostOnce", func(t *testing.T) {
		attemptID := start(t)
		_, err := svc.FinishAttempt(ctx, attemptID, userID, finishReq)
		require.NoError(t, err)

		_, err = svc.FinishAttempt(ctx, attemptID, userID, finishReq)
		assert.ErrorIs(t, err, apperror.ErrInvalidState)
	})

	t.Run("OwnershipEnforced", func(t *testing.T) {
		attemptID := start(t)
		_, err := svc.FinishAttempt(ctx, attemptID, otherID, finishReq)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("UnknownAttempt", func(t *testing.T) {
		_, err := svc.FinishAttempt(ctx, uuid.New(), userID, finishReq)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestGetAttemptOwnership(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	userID := createUser(t, db)
	otherID := createUser(t, db)

	attempt, err := svc.StartAttempt(ctx, userID, attemptDto.StartAttemptRequest{GameType: "reaction"})
	require.NoError(t, err)

	_, err = svc.GetAttempt(ctx, attempt.ID, otherID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	got, err := svc.GetAttempt(ctx, attempt.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, attempt.ID, got.ID)
}

func TestGetStats(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	userID := createUser(t, db)

	t.Run("EmptySet", func(t *testing.T) {
		stats, err := svc.GetStats(ctx, userID, attemptDto.StatsFilter{})
		require.NoError(t, err)
		require.Len(t, stats, 4)
		for _, entry := range stats {
			assert.Zero(t, entry.TotalAttempts)
			assert.Nil(t, entry.AverageScore)
			assert.Nil(t, entry.BestScore)
		}
	})

	t.Run("AggregatesFinishedOnly", func(t *testing.T) {
		for _, tc := range []struct {
			durationMs int
			moves      int
		}{
			{5000, 3},  // score 945
			{10000, 5}, // score 900
		} {
			attempt, err := svc.StartAttempt(ctx, userID, attemptDto.StartAttemptRequest{GameType: "reaction"})
			require.NoError(t, err)
			_, err = svc.FinishAttempt(ctx, attempt.ID, userID, attemptDto.FinishAttemptRequest{
				Success:    boolPtr(true),
				Moves:      intPtr(tc.moves),
				DurationMs: intPtr(tc.durationMs),
			})
			require.NoError(t, err)
		}

		// An unfinished attempt stays out of the aggregates
		_, err := svc.StartAttempt(ctx, userID, attemptDto.StartAttemptRequest{GameType: "reaction"})
		require.NoError(t, err)

		stats, err := svc.GetStats(ctx, userID, attemptDto.StatsFilter{GameType: "reaction"})
		require.NoError(t, err)
		require.Len(t, stats, 1)

		entry := stats[0]
		assert.Equal(t, int64(2), entry.TotalAttempts)
		require.NotNil(t, entry.BestScore)
		assert.Equal(t, 945, *entry.BestScore)
		require.NotNil(t, entry.BestTimeMs)
		assert.Equal(t, 5000, *entry.BestTimeMs)
		require.NotNil(t, entry.FewestMoves)
		assert.Equal(t, 3, *entry.FewestMoves)
		require.NotNil(t, entry.AverageScore)
		assert.InDelta(t, 922.5, *entry.AverageScore, 0.001)
	})
}

func TestGetLeaderboard(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	first := createUser(t, db)
	second := createUser(t, db)

	play := func(userID uuid.UUID, durationMs int) {
		attempt, err := svc.StartAttempt(ctx, userID, attemptDto.StartAttemptRequest{GameType: "reaction"})
		require.NoError(t, err)
		_, err = svc.FinishAttempt(ctx, attempt.ID, userID, attemptDto.FinishAttemptRequest{
			Success:    boolPtr(true),
			Moves:      intPtr(0),
			DurationMs: intPtr(durationMs),
		})
		require.NoError(t, err)
	}

	play(first, 0)      // 1000
	play(first, 100000) // 500
	play(second, 0)     // 1000

	entries, err := svc.GetLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, first, entries[0].UserID)
	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, int64(1500), entries[0].TotalScore)
	assert.Equal(t, int64(2), entries[0].GamesPlayed)
	assert.Equal(t, "Tester", entries[0].DisplayName)

	assert.Equal(t, second, entries[1].UserID)
	assert.Equal(t, 2, entries[1].Position)
	assert.Equal(t, int64(1000), entries[1].TotalScore)
}

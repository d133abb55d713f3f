package service

import (
	"testing"
	"time"

	"elepad.app/backend/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func finishedAttempt(gameType entity.GameType, gameName string, success bool, durationMs, moves int, finishedAt time.Time) historyEntry {
	var puzzleID *uuid.UUID
	if gameType.RequiresPuzzle() {
		id := uuid.New()
		puzzleID = &id
	}
	return historyEntry{
		attempt: entity.Attempt{
			ID:         uuid.New(),
			GameType:   gameType,
			PuzzleID:   puzzleID,
			FinishedAt: &finishedAt,
			DurationMs: &durationMs,
			Moves:      &moves,
			Success:    &success,
		},
		gameName: gameName,
	}
}

// newEvalContext builds the context the way the service does: the first
// history entry is the triggering attempt, the rest is older history.
func newEvalContext(entries ...historyEntry) evalContext {
	return evalContext{
		attempt:  &entries[0].attempt,
		gameType: entries[0].attempt.GameType,
		gameName: entries[0].gameName,
		history:  entries,
	}
}

func TestParseCondition(t *testing.T) {
	t.Run("KnownTypes", func(t *testing.T) {
		assert.IsType(t, firstCompletionCondition{}, parseCondition(datatypes.JSONMap{"type": "first_completion"}))
		assert.IsType(t, timeUnderCondition{}, parseCondition(datatypes.JSONMap{"type": "time_under", "value": float64(30)}))
		assert.IsType(t, movesUnderCondition{}, parseCondition(datatypes.JSONMap{"type": "moves_under", "value": float64(20)}))
		assert.IsType(t, combinedCondition{}, parseCondition(datatypes.JSONMap{"type": "combined", "time": float64(45), "moves": float64(25)}))
		assert.IsType(t, streakCondition{}, parseCondition(datatypes.JSONMap{"type": "streak", "value": float64(5)}))
	})

	t.Run("UnknownTypeNeverErrors", func(t *testing.T) {
		c := parseCondition(datatypes.JSONMap{"type": "total_play_time", "value": float64(3600)})
		assert.IsType(t, unsupportedCondition{}, c)
		assert.False(t, c.evaluate(evalContext{}))
	})

	t.Run("MissingValueDegrades", func(t *testing.T) {
		assert.IsType(t, unsupportedCondition{}, parseCondition(datatypes.JSONMap{"type": "time_under"}))
		assert.IsType(t, unsupportedCondition{}, parseCondition(datatypes.JSONMap{"type": "combined", "time": float64(45)}))
		assert.IsType(t, unsupportedCondition{}, parseCondition(datatypes.JSONMap{}))
	})

	t.Run("GameBinding", func(t *testing.T) {
		c := parseCondition(datatypes.JSONMap{"type": "first_completion", "game": "sudoku"})
		assert.Equal(t, "sudoku", c.requiredGame())

		c = parseCondition(datatypes.JSONMap{"type": "first_completion"})
		assert.Equal(t, "", c.requiredGame())
	})
}

func TestFirstCompletionCondition(t *testing.T) {
	now := time.Now()

	t.Run("FirstSuccessUnlocks", func(t *testing.T) {
		ec := newEvalContext(
			finishedAttempt(entity.GameTypeMemory, "memory_match", true, 5000, 3, now),
		)
		assert.True(t, firstCompletionCondition{}.evaluate(ec))
	})

	t.Run("SecondSuccessDoesNot", func(t *testing.T) {
		ec := newEvalContext(
			finishedAttempt(entity.GameTypeMemory, "memory_match", true, 5000, 3, now),
			finishedAttempt(entity.GameTypeMemory, "memory_match", true, 8000, 6, now.Add(-time.Hour)),
		)
		assert.False(t, firstCompletionCondition{}.evaluate(ec))
	})

	t.Run("PriorFailureIgnored", func(t *testing.T) {
		ec := newEvalContext(
			finishedAttempt(entity.GameTypeMemory, "memory_match", true, 5000, 3, now),
			finishedAttempt(entity.GameTypeMemory, "memory_match", false, 8000, 6, now.Add(-time.Hour)),
		)
		assert.True(t, firstCompletionCondition{}.evaluate(ec))
	})

	t.Run("OtherGameNameIgnored", func(t *testing.T) {
		ec := newEvalContext(
			finishedAttempt(entity.GameTypeLogic, "sudoku", true, 5000, 3, now),
			finishedAttempt(entity.GameTypeLogic, "net", true, 8000, 6, now.Add(-time.Hour)),
		)
		// Bound to sudoku: the prior net win does not count
		assert.True(t, firstCompletionCondition{game: "sudoku"}.evaluate(ec))
		// Unbound: any prior logic win counts
		assert.False(t, firstCompletionCondition{}.evaluate(ec))
	})
}

func TestThresholdConditions(t *testing.T) {
	now := time.Now()
	ec := newEvalContext(finishedAttempt(entity.GameTypeMemory, "memory_match", true, 25000, 18, now))

	assert.True(t, timeUnderCondition{seconds: 30}.evaluate(ec))
	assert.False(t, timeUnderCondition{seconds: 25}.evaluate(ec)) // strict less-than

	assert.True(t, movesUnderCondition{moves: 20}.evaluate(ec))
	assert.False(t, movesUnderCondition{moves: 18}.evaluate(ec))

	assert.True(t, combinedCondition{seconds: 30, moves: 20}.evaluate(ec))
	assert.False(t, combinedCondition{seconds: 30, moves: 10}.evaluate(ec))
	assert.False(t, combinedCondition{seconds: 10, moves: 20}.evaluate(ec))
}

func TestStreakCondition(t *testing.T) {
	now := time.Now()

	t.Run("UnbrokenRunUnlocks", func(t *testing.T) {
		ec := newEvalContext(
			finishedAttempt(entity.GameTypeLogic, "sudoku", true, 5000, 3, now),
			finishedAttempt(entity.GameTypeLogic, "sudoku", true, 5000, 3, now.Add(-time.Hour)),
			finishedAttempt(entity.GameTypeLogic, "sudoku", true, 5000, 3, now.Add(-2*time.Hour)),
		)
		assert.True(t, streakCondition{count: 3}.evaluate(ec))
		assert.False(t, streakCondition{count: 4}.evaluate(ec))
	})

	t.Run("FailureBreaksRun", func(t *testing.T) {
		ec := newEvalContext(
			finishedAttempt(entity.GameTypeLogic, "sudoku", true, 5000, 3, now),
			finishedAttempt(entity.GameTypeLogic, "sudoku", false, 5000, 3, now.Add(-time.Hour)),
			finishedAttempt(entity.GameTypeLogic, "sudoku", true, 5000, 3, now.Add(-2*time.Hour)),
			finishedAttempt(entity.GameTypeLogic, "sudoku", true, 5000, 3, now.Add(-3*time.Hour)),
		)
		// Three successes exist, but not as the newest unbroken run
		assert.False(t, streakCondition{count: 3}.evaluate(ec))
	})

	t.Run("OtherTypeDoesNotInterrupt", func(t *testing.T) {
		ec := newEvalContext(
			finishedAttempt(entity.GameTypeLogic, "sudoku", true, 5000, 3, now),
			finishedAttempt(entity.GameTypeMemory, "memory_match", false, 5000, 3, now.Add(-time.Hour)),
			finishedAttempt(entity.GameTypeLogic, "sudoku", true, 5000, 3, now.Add(-2*time.Hour)),
		)
		// The failed memory attempt is outside the logic filter
		assert.True(t, streakCondition{count: 2}.evaluate(ec))
	})

	t.Run("NonPositiveCount", func(t *testing.T) {
		ec := newEvalContext(finishedAttempt(entity.GameTypeLogic, "sudoku", true, 5000, 3, now))
		assert.False(t, streakCondition{count: 0}.evaluate(ec))
	})
}

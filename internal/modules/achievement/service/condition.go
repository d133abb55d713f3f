package service

import (
	"elepad.app/backend/internal/entity"
	"gorm.io/datatypes"
)

// Condition is the decoded unlock rule of a catalog achievement. The set of
// variants is closed; anything the decoder does not recognize becomes
// unsupportedCondition, which never evaluates true. Bad catalog data must
// never surface as an error.
type Condition interface {
	// requiredGame returns the specific game name the condition is bound
	// to, or "" when it applies to the whole game type.
	requiredGame() string
	evaluate(ec evalContext) bool
}

// historyEntry is one finished attempt with its game name already resolved,
// so condition evaluation never issues queries of its own.
type historyEntry struct {
	attempt  entity.Attempt
	gameName string
}

// evalContext carries everything a condition may inspect: the triggering
// attempt, its resolved game identifiers, and the user's finished-attempt
// history ordered by finish time descending (triggering attempt included).
type evalContext struct {
	attempt  *entity.Attempt
	gameType entity.GameType
	gameName string
	history  []historyEntry
}

// matches applies the shared game filter: by resolved game name when the
// condition names a game, by coarse game type otherwise.
func (ec evalContext) matches(e historyEntry, game string) bool {
	if game != "" {
		return e.gameName == game
	}
	return e.attempt.GameType == ec.gameType
}

type firstCompletionCondition struct {
	game string
}

func (c firstCompletionCondition) requiredGame() string { return c.game }

func (c firstCompletionCondition) evaluate(ec evalContext) bool {
	for _, e := range ec.history {
		if e.attempt.ID == ec.attempt.ID {
			continue
		}
		if !e.attempt.Succeeded() {
			continue
		}
		if ec.matches(e, c.game) {
			// A prior successful completion exists
			return false
		}
	}
	return true
}

type timeUnderCondition struct {
	game    string
	seconds int
}

func (c timeUnderCondition) requiredGame() string { return c.game }

func (c timeUnderCondition) evaluate(ec evalContext) bool {
	return ec.attempt.DurationMs != nil && *ec.attempt.DurationMs < c.seconds*1000
}

type movesUnderCondition struct {
	game  string
	moves int
}

func (c movesUnderCondition) requiredGame() string { return c.game }

func (c movesUnderCondition) evaluate(ec evalContext) bool {
	return ec.attempt.Moves != nil && *ec.attempt.Moves < c.moves
}

type combinedCondition struct {
	game    string
	seconds int
	moves   int
}

func (c combinedCondition) requiredGame() string { return c.game }

func (c combinedCondition) evaluate(ec evalContext) bool {
	return timeUnderCondition{seconds: c.seconds}.evaluate(ec) &&
		movesUnderCondition{moves: c.moves}.evaluate(ec)
}

type streakCondition struct {
	game  string
	count int
}

func (c streakCondition) requiredGame() string { return c.game }

// evaluate walks the qualifying attempts newest-first and requires the
// first count of them to be an unbroken run of successes. A failure inside
// the run breaks it even if enough successes exist further back.
func (c streakCondition) evaluate(ec evalContext) bool {
	if c.count <= 0 {
		return false
	}
	run := 0
	for _, e := range ec.history {
		if !ec.matches(e, c.game) {
			continue
		}
		if !e.attempt.Succeeded() {
			return false
		}
		run++
		if run >= c.count {
			return true
		}
	}
	return false
}

type unsupportedCondition struct {
	conditionType string
}

func (c unsupportedCondition) requiredGame() string      { return "" }
func (c unsupportedCondition) evaluate(evalContext) bool { return false }

// parseCondition decodes the stored rule into its typed variant. Missing or
// malformed fields degrade to unsupportedCondition rather than an error.
func parseCondition(raw datatypes.JSONMap) Condition {
	conditionType, _ := raw["type"].(string)
	game, _ := raw["game"].(string)

	switch conditionType {
	case "first_completion":
		return firstCompletionCondition{game: game}
	case "time_under":
		seconds, ok := intField(raw, "value")
		if !ok {
			return unsupportedCondition{conditionType: conditionType}
		}
		return timeUnderCondition{game: game, seconds: seconds}
	case "moves_under":
		moves, ok := intField(raw, "value")
		if !ok {
			return unsupportedCondition{conditionType: conditionType}
		}
		return movesUnderCondition{game: game, moves: moves}
	case "combined":
		seconds, okTime := intField(raw, "time")
		moves, okMoves := intField(raw, "moves")
		if !okTime || !okMoves {
			return unsupportedCondition{conditionType: conditionType}
		}
		return combinedCondition{game: game, seconds: seconds, moves: moves}
	case "streak":
		count, ok := intField(raw, "value")
		if !ok {
			return unsupportedCondition{conditionType: conditionType}
		}
		return streakCondition{game: game, count: count}
	default:
		return unsupportedCondition{conditionType: conditionType}
	}
}

// intField reads a numeric field from decoded JSON (numbers arrive as
// float64; ints appear when the map was built in Go code).
func intField(raw datatypes.JSONMap, key string) (int, bool) {
	switch v := raw[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

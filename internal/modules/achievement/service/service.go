package service

import (
	"context"
	"errors"

	"elepad.app/backend/internal/entity"
	achievementDto "elepad.app/backend/internal/modules/achievement/dto"
	achievementRepo "elepad.app/backend/internal/modules/achievement/repository"
	attemptRepo "elepad.app/backend/internal/modules/attempt/repository"
	puzzleRepo "elepad.app/backend/internal/modules/puzzle/repository"
	"elepad.app/backend/pkg/apperror"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// reactionGameName is the resolved game name for reaction attempts, which
// carry no puzzle reference to look a name up from.
const reactionGameName = "reaction"

type AchievementService interface {
	// CheckAndUnlockAchievements evaluates the locked catalog against the
	// finished attempt and unlocks every satisfied achievement. Returns the
	// newly unlocked achievements in ascending-points order. Unsuccessful
	// attempts never unlock anything.
	CheckAndUnlockAchievements(ctx context.Context, userID, attemptID uuid.UUID) ([]entity.Achievement, error)
	UnlockAchievement(ctx context.Context, userID uuid.UUID, code string) (*achievementDto.UnlockResponse, error)
	ListByGameType(ctx context.Context, gameType string) ([]entity.Achievement, error)
	ListWithUnlockStatus(ctx context.Context, userID uuid.UUID, filter achievementDto.ListFilter) ([]achievementDto.AchievementWithStatus, error)
	GetProgress(ctx context.Context, userID uuid.UUID, filter achievementDto.ListFilter) (*achievementDto.ProgressResponse, error)
}

type achievementService struct {
	repo        achievementRepo.AchievementRepository
	attemptRepo attemptRepo.AttemptRepository
	puzzleRepo  puzzleRepo.PuzzleRepository
}

func NewAchievementService(repo achievementRepo.AchievementRepository, attemptRepo attemptRepo.AttemptRepository, puzzleRepo puzzleRepo.PuzzleRepository) AchievementService {
	return &achievementService{
		repo:        repo,
		attemptRepo: attemptRepo,
		puzzleRepo:  puzzleRepo,
	}
}

func (s *achievementService) CheckAndUnlockAchievements(ctx context.Context, userID, attemptID uuid.UUID) ([]entity.Achievement, error) {
	attempt, err := s.attemptRepo.FindByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Internal("failed to load attempt", err)
	}

	// Only successful attempts can trigger unlocks
	if !attempt.Succeeded() {
		return []entity.Achievement{}, nil
	}

	gameType := attempt.GameType
	if !gameType.Valid() {
		return []entity.Achievement{}, nil
	}

	// Resolve the fine-grained game name once for the whole call
	gameName, err := s.resolveGameName(ctx, attempt)
	if err != nil {
		return nil, apperror.Internal("failed to resolve game name", err)
	}

	var (
		catalog  []entity.Achievement
		unlocked []entity.UserAchievement
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		catalog, err = s.repo.ListByGameType(gctx, &gameType)
		return err
	})
	g.Go(func() error {
		var err error
		unlocked, err = s.repo.ListUnlocked(gctx, userID, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.Internal("failed to load achievement state", err)
	}

	unlockedIDs := make(map[uint]bool, len(unlocked))
	for _, ua := range unlocked {
		unlockedIDs[ua.AchievementID] = true
	}

	// Prefetch the user's finished attempts with resolved game names once;
	// every condition evaluates against this snapshot instead of issuing
	// its own historical queries.
	history, err := s.loadHistory(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to load attempt history", err)
	}

	ec := evalContext{
		attempt:  attempt,
		gameType: gameType,
		gameName: gameName,
		history:  history,
	}

	var newlyUnlocked []entity.Achievement
	for _, achievement := range catalog {
		if unlockedIDs[achievement.ID] {
			continue
		}

		condition := parseCondition(achievement.Condition)

		// A condition bound to a specific game never matches an attempt
		// of a different game, whatever its type.
		if g := condition.requiredGame(); g != "" && g != gameName {
			continue
		}

		if !condition.evaluate(ec) {
			continue
		}

		inserted, err := s.repo.InsertUnlock(ctx, &entity.UserAchievement{
			UserID:        userID,
			AchievementID: achievement.ID,
		})
		if err != nil {
			return nil, apperror.Internal("failed to unlock achievement", err)
		}
		// A concurrent call may have unlocked it between the snapshot and
		// here; in that race only one caller reports it as new.
		if inserted {
			newlyUnlocked = append(newlyUnlocked, achievement)
		}
	}

	if newlyUnlocked == nil {
		newlyUnlocked = []entity.Achievement{}
	}
	return newlyUnlocked, nil
}

func (s *achievementService) UnlockAchievement(ctx context.Context, userID uuid.UUID, code string) (*achievementDto.UnlockResponse, error) {
	achievement, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Internal("failed to load achievement", err)
	}

	unlock := &entity.UserAchievement{
		UserID:        userID,
		AchievementID: achievement.ID,
	}
	inserted, err := s.repo.InsertUnlock(ctx, unlock)
	if err != nil {
		return nil, apperror.Internal("failed to unlock achievement", err)
	}

	resp := &achievementDto.UnlockResponse{
		Achievement:     *achievement,
		AlreadyUnlocked: !inserted,
	}
	if inserted {
		resp.UserAchievement = unlock
	}
	return resp, nil
}

func (s *achievementService) ListByGameType(ctx context.Context, gameType string) ([]entity.Achievement, error) {
	gt := entity.GameType(gameType)
	if !gt.Valid() {
		return nil, apperror.ErrInvalidInput
	}
	achievements, err := s.repo.ListByGameType(ctx, &gt)
	if err != nil {
		return nil, apperror.Internal("failed to list achievements", err)
	}
	return achievements, nil
}

func (s *achievementService) ListWithUnlockStatus(ctx context.Context, userID uuid.UUID, filter achievementDto.ListFilter) ([]achievementDto.AchievementWithStatus, error) {
	gameType := gameTypeFilter(filter)

	catalog, err := s.repo.ListByGameType(ctx, gameType)
	if err != nil {
		return nil, apperror.Internal("failed to list achievements", err)
	}
	unlocked, err := s.repo.ListUnlocked(ctx, userID, gameType)
	if err != nil {
		return nil, apperror.Internal("failed to list unlocked achievements", err)
	}

	unlockedAt := make(map[uint]*entity.UserAchievement, len(unlocked))
	for i := range unlocked {
		unlockedAt[unlocked[i].AchievementID] = &unlocked[i]
	}

	result := make([]achievementDto.AchievementWithStatus, 0, len(catalog))
	for _, achievement := range catalog {
		entry := achievementDto.AchievementWithStatus{Achievement: achievement}
		if ua, ok := unlockedAt[achievement.ID]; ok {
			entry.Unlocked = true
			t := ua.UnlockedAt
			entry.UnlockedAt = &t
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *achievementService) GetProgress(ctx context.Context, userID uuid.UUID, filter achievementDto.ListFilter) (*achievementDto.ProgressResponse, error) {
	gameType := gameTypeFilter(filter)

	catalog, err := s.repo.ListByGameType(ctx, gameType)
	if err != nil {
		return nil, apperror.Internal("failed to list achievements", err)
	}
	unlocked, err := s.repo.ListUnlocked(ctx, userID, gameType)
	if err != nil {
		return nil, apperror.Internal("failed to list unlocked achievements", err)
	}

	progress := &achievementDto.ProgressResponse{
		TotalAchievements:    len(catalog),
		UnlockedAchievements: len(unlocked),
	}
	for _, achievement := range catalog {
		progress.TotalPoints += achievement.Points
	}
	for _, ua := range unlocked {
		progress.EarnedPoints += ua.Achievement.Points
	}
	return progress, nil
}

// resolveGameName resolves the attempt's fine-grained game identifier: the
// referenced puzzle's name, or the fixed reaction name when no puzzle exists.
func (s *achievementService) resolveGameName(ctx context.Context, attempt *entity.Attempt) (string, error) {
	if attempt.PuzzleID == nil {
		return reactionGameName, nil
	}
	if attempt.Puzzle != nil {
		return attempt.Puzzle.Name, nil
	}
	return s.puzzleRepo.ResolveGameName(ctx, *attempt.PuzzleID)
}

func (s *achievementService) loadHistory(ctx context.Context, userID uuid.UUID) ([]historyEntry, error) {
	attempts, err := s.attemptRepo.ListFinishedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	history := make([]historyEntry, 0, len(attempts))
	for _, a := range attempts {
		name := reactionGameName
		if a.PuzzleID != nil {
			if a.Puzzle != nil {
				name = a.Puzzle.Name
			} else {
				name, err = s.puzzleRepo.ResolveGameName(ctx, *a.PuzzleID)
				if err != nil {
					return nil, err
				}
			}
		}
		history = append(history, historyEntry{attempt: a, gameName: name})
	}
	return history, nil
}

func gameTypeFilter(filter achievementDto.ListFilter) *entity.GameType {
	if filter.GameType == "" {
		return nil
	}
	gt := entity.GameType(filter.GameType)
	return &gt
}

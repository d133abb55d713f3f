package service

import (
	"context"
	"fmt"
	"log"

	"elepad.app/backend/internal/entity"
	achievementService "elepad.app/backend/internal/modules/achievement/service"
	attemptDto "elepad.app/backend/internal/modules/attempt/dto"
	attemptService "elepad.app/backend/internal/modules/attempt/service"
	notifService "elepad.app/backend/internal/modules/notification/service"
	streakService "elepad.app/backend/internal/modules/streak/service"
	"github.com/google/uuid"
)

// CompletionResult is what the client sees after the orchestrated finish.
// Achievements and Streak reflect best-effort bookkeeping: when either
// follow-up fails the finished attempt is still returned.
type CompletionResult struct {
	Attempt         *entity.Attempt      `json:"attempt"`
	NewAchievements []entity.Achievement `json:"new_achievements"`
	Streak          *entity.UserStreak   `json:"streak,omitempty"`
}

// CompletionService sequences finish -> achievement check -> streak update.
// The finish is authoritative: its errors propagate. The gamification
// follow-ups are derived rewards; their failures are logged, never surfaced,
// so a transient bookkeeping problem cannot void a finished game.
type CompletionService interface {
	CompleteAttempt(ctx context.Context, userID, attemptID uuid.UUID, req attemptDto.CompleteAttemptRequest) (*CompletionResult, error)
}

type completionService struct {
	attemptService      attemptService.AttemptService
	achievementService  achievementService.AchievementService
	streakService       streakService.StreakService
	notificationService notifService.NotificationService
}

func NewCompletionService(
	attemptSvc attemptService.AttemptService,
	achievementSvc achievementService.AchievementService,
	streakSvc streakService.StreakService,
	notificationSvc notifService.NotificationService,
) CompletionService {
	return &completionService{
		attemptService:      attemptSvc,
		achievementService:  achievementSvc,
		streakService:       streakSvc,
		notificationService: notificationSvc,
	}
}

func (s *completionService) CompleteAttempt(ctx context.Context, userID, attemptID uuid.UUID, req attemptDto.CompleteAttemptRequest) (*CompletionResult, error) {
	attempt, err := s.attemptService.FinishAttempt(ctx, attemptID, userID, req.FinishAttemptRequest)
	if err != nil {
		return nil, err
	}

	result := &CompletionResult{
		Attempt:         attempt,
		NewAchievements: []entity.Achievement{},
	}

	unlocked, err := s.achievementService.CheckAndUnlockAchievements(ctx, userID, attemptID)
	if err != nil {
		log.Printf("achievement check failed for attempt %s: %v", attemptID, err)
	} else {
		result.NewAchievements = unlocked
		s.notifyUnlocks(ctx, userID, unlocked)
	}

	streak, err := s.streakService.UpdateOnCompletion(ctx, userID, req.LocalDate)
	if err != nil {
		log.Printf("streak update failed for user %s: %v", userID, err)
	} else {
		result.Streak = streak
		s.notifyStreakMilestone(ctx, userID, streak)
	}

	return result, nil
}

// streakMilestones are the current-streak values worth celebrating.
var streakMilestones = map[int]bool{3: true, 7: true, 14: true, 30: true, 100: true}

func (s *completionService) notifyStreakMilestone(ctx context.Context, userID uuid.UUID, streak *entity.UserStreak) {
	if s.notificationService == nil || streak == nil || !streakMilestones[streak.CurrentStreak] {
		return
	}
	notification := &entity.Notification{
		UserID:     userID,
		EntityID:   fmt.Sprintf("%d", streak.CurrentStreak),
		EntityType: "streak",
		Type:       "streak_milestone",
		Message:    fmt.Sprintf("🔥 %d days in a row! Keep it up", streak.CurrentStreak),
	}
	if err := s.notificationService.CreateNotification(ctx, notification); err != nil {
		log.Printf("failed to send streak notification to user %s: %v", userID, err)
	}
}

func (s *completionService) notifyUnlocks(ctx context.Context, userID uuid.UUID, unlocked []entity.Achievement) {
	if s.notificationService == nil {
		return
	}
	for _, achievement := range unlocked {
		notification := &entity.Notification{
			UserID:     userID,
			EntityID:   achievement.Code,
			EntityType: "achievement",
			Type:       "achievement_unlocked",
			Message:    fmt.Sprintf("🏆 Achievement unlocked: %s (+%d points)", achievement.Title, achievement.Points),
		}
		if err := s.notificationService.CreateNotification(ctx, notification); err != nil {
			log.Printf("failed to send unlock notification to user %s: %v", userID, err)
		}
	}
}

package service

import (
	"context"
	"time"

	"elepad.app/backend/internal/entity"
	streakDto "elepad.app/backend/internal/modules/streak/dto"
	streakRepo "elepad.app/backend/internal/modules/streak/repository"
	"elepad.app/backend/pkg/apperror"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type StreakService interface {
	// UpdateOnCompletion credits the user's streak for the given client-local
	// calendar date. At most one credit per date; repeated calls for the same
	// date are no-ops, not errors.
	UpdateOnCompletion(ctx context.Context, userID uuid.UUID, localDate string) (*entity.UserStreak, error)
	// GetStreak returns the user's streak, lazily resetting the current
	// counter to zero when more than one day has passed without play.
	GetStreak(ctx context.Context, userID uuid.UUID) (*entity.UserStreak, error)
	GetHistory(ctx context.Context, userID uuid.UUID, filter streakDto.HistoryFilter) ([]streakDto.PlayedDate, error)
}

type streakService struct {
	repo streakRepo.StreakRepository
}

func NewStreakService(repo streakRepo.StreakRepository) StreakService {
	return &streakService{repo: repo}
}

func (s *streakService) UpdateOnCompletion(ctx context.Context, userID uuid.UUID, localDate string) (*entity.UserStreak, error) {
	date, err := parseDate(localDate)
	if err != nil {
		return nil, apperror.ErrInvalidInput
	}

	inserted, err := s.repo.InsertHistory(ctx, &entity.StreakHistory{
		UserID:   userID,
		PlayedOn: date,
	})
	if err != nil {
		return nil, apperror.Internal("failed to record play date", err)
	}
	if !inserted {
		// Already credited for this date; leave the counters untouched
		return s.currentOrZero(ctx, userID)
	}

	streak, err := s.repo.GetStreak(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to load streak", err)
	}
	if streak == nil {
		streak = &entity.UserStreak{UserID: userID}
	}

	switch {
	case streak.LastPlayedOn == nil:
		streak.CurrentStreak = 1
	case daysBetween(*streak.LastPlayedOn, date) == 1:
		streak.CurrentStreak++
	case daysBetween(*streak.LastPlayedOn, date) == 0:
		// Unreachable given the history guard; keep the counters as-is
	default:
		// Gap of more than one day (or a date behind the last play)
		streak.CurrentStreak = 1
	}
	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	streak.LastPlayedOn = &date

	if err := s.repo.UpsertStreak(ctx, streak); err != nil {
		return nil, apperror.Internal("failed to save streak", err)
	}
	return streak, nil
}

func (s *streakService) GetStreak(ctx context.Context, userID uuid.UUID) (*entity.UserStreak, error) {
	streak, err := s.repo.GetStreak(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to load streak", err)
	}
	if streak == nil {
		// No row yet; report the zero value without writing one
		return &entity.UserStreak{UserID: userID}, nil
	}

	// Self-healing reset: a stale streak is never reported as still active
	if streak.LastPlayedOn != nil && streak.CurrentStreak != 0 {
		today := truncateToDate(time.Now().UTC())
		if daysBetween(*streak.LastPlayedOn, today) > 1 {
			if err := s.repo.SetCurrentStreak(ctx, userID, 0); err != nil {
				return nil, apperror.Internal("failed to reset streak", err)
			}
			streak.CurrentStreak = 0
		}
	}
	return streak, nil
}

func (s *streakService) GetHistory(ctx context.Context, userID uuid.UUID, filter streakDto.HistoryFilter) ([]streakDto.PlayedDate, error) {
	var start, end *time.Time
	if filter.StartDate != "" {
		d, err := parseDate(filter.StartDate)
		if err != nil {
			return nil, apperror.ErrInvalidInput
		}
		start = &d
	}
	if filter.EndDate != "" {
		d, err := parseDate(filter.EndDate)
		if err != nil {
			return nil, apperror.ErrInvalidInput
		}
		end = &d
	}

	rows, err := s.repo.ListHistory(ctx, userID, start, end)
	if err != nil {
		return nil, apperror.Internal("failed to load streak history", err)
	}

	dates := make([]streakDto.PlayedDate, 0, len(rows))
	for _, row := range rows {
		dates = append(dates, streakDto.PlayedDate{Date: row.PlayedOn.Format(dateLayout)})
	}
	return dates, nil
}

func (s *streakService) currentOrZero(ctx context.Context, userID uuid.UUID) (*entity.UserStreak, error) {
	streak, err := s.repo.GetStreak(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to load streak", err)
	}
	if streak == nil {
		return &entity.UserStreak{UserID: userID}, nil
	}
	return streak, nil
}

// parseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func parseDate(value string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, value, time.UTC)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns b - a in whole calendar days.
func daysBetween(a, b time.Time) int {
	a = truncateToDate(a.UTC())
	b = truncateToDate(b.UTC())
	return int(b.Sub(a).Hours() / 24)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"habitPilotAPI/internal/calendar"
	"habitPilotAPI/internal/habit"
	"habitPilotAPI/internal/stats"
	"habitPilotAPI/internal/streak"
	"habitPilotAPI/utils"
)

// maxCompletionAttempts bounds the optimistic retry loop in RecordCompletion.
const maxCompletionAttempts = 4

type HabitService struct {
	store        HabitStore
	notifService *NotificationService
	// now is the clock for "today"; swapped in tests.
	now func() time.Time
}

func NewHabitService(store HabitStore, notifService *NotificationService) *HabitService {
	return &HabitService{
		store:        store,
		notifService: notifService,
		now:          time.Now,
	}
}

func (s *HabitService) CreateHabit(ctx context.Context, clerkID string, req *habit.CreateHabitRequest) (*habit.Habit, error) {
	userID, err := s.store.ResolveUser(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if req.Name == "" {
		return nil, fmt.Errorf("habit name is required")
	}
	if !req.Frequency.Valid() {
		return nil, fmt.Errorf("invalid frequency %q", req.Frequency)
	}

	now := s.now()
	h := &habit.Habit{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           req.Name,
		Description:    req.Description,
		Goal:           req.Goal,
		Category:       req.Category,
		Frequency:      req.Frequency,
		Streak:         0,
		LastCompleted:  nil,
		CompletedDates: []string{},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.Create(ctx, h); err != nil {
		return nil, err
	}

	return h, nil
}

func (s *HabitService) GetHabits(ctx context.Context, clerkID string) ([]*habit.Habit, error) {
	userID, err := s.store.ResolveUser(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	return s.store.List(ctx, userID)
}

func (s *HabitService) GetHabit(ctx context.Context, clerkID string, habitID uuid.UUID) (*habit.Habit, error) {
	userID, err := s.store.ResolveUser(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	return s.store.Get(ctx, userID, habitID)
}

func (s *HabitService) UpdateHabit(ctx context.Context, clerkID string, habitID uuid.UUID, req *habit.UpdateHabitRequest) (*habit.Habit, error) {
	userID, err := s.store.ResolveUser(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if req.Frequency != nil && !req.Frequency.Valid() {
		return nil, fmt.Errorf("invalid frequency %q", *req.Frequency)
	}

	return s.store.UpdateFields(ctx, userID, habitID, req)
}

func (s *HabitService) DeleteHabit(ctx context.Context, clerkID string, habitID uuid.UUID) error {
	userID, err := s.store.ResolveUser(ctx, clerkID)
	if err != nil {
		return err
	}

	return s.store.Delete(ctx, userID, habitID)
}

// RecordCompletion marks the habit complete for today and returns the new
// streak. The read-modify-write is optimistic: each attempt reads the habit
// with its version, recomputes, and writes conditionally; a version mismatch
// restarts the whole attempt. Completing the same habit twice in one calendar
// day is a no-op that performs no write.
func (s *HabitService) RecordCompletion(ctx context.Context, clerkID string, habitID uuid.UUID) (*habit.CompletionResponse, error) {
	userID, err := s.store.ResolveUser(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxCompletionAttempts; attempt++ {
		h, err := s.store.Get(ctx, userID, habitID)
		if err != nil {
			return nil, err
		}

		now := s.now()
		today := streak.DayOf(now)

		if streak.Contains(h.CompletedDates, today) {
			return &habit.CompletionResponse{
				HabitID:        h.ID,
				Streak:         h.Streak,
				CompletedToday: true,
			}, nil
		}

		dates := make([]string, 0, len(h.CompletedDates)+1)
		dates = append(dates, h.CompletedDates...)
		dates = append(dates, now.Format(time.RFC3339))

		newStreak := streak.Compute(dates, now)

		err = s.store.UpdateCompletion(ctx, userID, habitID, h.Version, dates, newStreak, now)
		if errors.Is(err, habit.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if s.notifService != nil && utils.IsStreakMilestone(newStreak) {
			utils.NotifyStreakMilestone(s.notifService, userID, h.Name, newStreak)
		}

		return &habit.CompletionResponse{
			HabitID:        h.ID,
			Streak:         newStreak,
			CompletedToday: true,
		}, nil
	}

	log.Printf("RecordCompletion: retry budget exhausted for habit %s", habitID)
	return nil, habit.ErrConflict
}

// GetCalendar returns the month grid of completed days for one habit.
func (s *HabitService) GetCalendar(ctx context.Context, clerkID string, habitID uuid.UUID, year int, month int) (*calendar.CalendarResponse, error) {
	userID, err := s.store.ResolveUser(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	h, err := s.store.Get(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	completed := streak.DaySet(h.CompletedDates)
	today := streak.DayOf(s.now())

	startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 1, -1)

	var days []*calendar.CalendarDay
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		day := streak.DayOf(d)
		_, done := completed[day]
		days = append(days, &calendar.CalendarDay{
			Date:      d,
			Completed: done,
			IsToday:   day == today,
		})
	}

	return &calendar.CalendarResponse{
		HabitID: habitID.String(),
		Year:    year,
		Month:   month,
		Days:    days,
	}, nil
}

func (s *HabitService) GetUserStats(ctx context.Context, clerkID string) (*stats.UserStats, error) {
	userID, err := s.store.ResolveUser(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	habits, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := streak.DayOf(now)

	userStats := &stats.UserStats{
		TotalHabits: len(habits),
		Habits:      []*stats.HabitSummary{},
	}

	for _, h := range habits {
		current := streak.Compute(h.CompletedDates, now)
		longest := streak.LongestRun(h.CompletedDates)
		doneToday := streak.Contains(h.CompletedDates, today)

		summary := &stats.HabitSummary{
			HabitID:        h.ID,
			Name:           h.Name,
			Category:       h.Category,
			CurrentStreak:  current,
			LongestStreak:  longest,
			TotalCompleted: len(streak.DaySet(h.CompletedDates)),
			CompletedToday: doneToday,
		}
		userStats.Habits = append(userStats.Habits, summary)

		if doneToday {
			userStats.CompletedToday++
		}
		if current > userStats.BestCurrentStreak {
			userStats.BestCurrentStreak = current
		}
		if longest > userStats.LongestStreakEver {
			userStats.LongestStreakEver = longest
		}
		userStats.TotalCompletions += summary.TotalCompleted
	}

	return userStats, nil
}

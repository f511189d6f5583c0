package stats

import "github.com/google/uuid"

type HabitSummary struct {
	HabitID        uuid.UUID `json:"habit_id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	CurrentStreak  int       `json:"current_streak"`
	LongestStreak  int       `json:"longest_streak"`
	TotalCompleted int       `json:"total_completed"`
	CompletedToday bool      `json:"completed_today"`
}

type UserStats struct {
	TotalHabits       int             `json:"total_habits"`
	CompletedToday    int             `json:"completed_today"`
	BestCurrentStreak int             `json:"best_current_streak"`
	LongestStreakEver int             `json:"longest_streak_ever"`
	TotalCompletions  int             `json:"total_completions"`
	Habits            []*HabitSummary `json:"habits"`
}

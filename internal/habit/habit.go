package habit

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound means the habit does not exist or is not owned by the
	// requesting user (possibly deleted concurrently).
	ErrNotFound = errors.New("habit not found")
	// ErrConflict means a concurrent write was detected and the optimistic
	// retry budget was exhausted. Safe for the caller to retry later.
	ErrConflict = errors.New("habit completion conflict")
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

type Habit struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	Goal        string    `json:"goal" db:"goal"`
	Category    string    `json:"category" db:"category"`
	Frequency   Frequency `json:"frequency" db:"frequency"`
	// Streak is a cache derived from CompletedDates; it is recomputed on
	// every completion write and never edited directly.
	Streak         int        `json:"streak" db:"streak"`
	LastCompleted  *time.Time `json:"last_completed" db:"last_completed"`
	CompletedDates []string   `json:"completed_dates" db:"completed_dates"`
	Version        int64      `json:"-" db:"version"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateHabitRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Goal        string    `json:"goal"`
	Category    string    `json:"category"`
	Frequency   Frequency `json:"frequency"`
}

// UpdateHabitRequest edits descriptive fields only. Completion data is owned
// by the completion recorder and is not reachable from here.
type UpdateHabitRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Goal        *string    `json:"goal"`
	Category    *string    `json:"category"`
	Frequency   *Frequency `json:"frequency"`
}

type CompletionResponse struct {
	HabitID        uuid.UUID `json:"habit_id"`
	Streak         int       `json:"streak"`
	CompletedToday bool      `json:"completed_today"`
}

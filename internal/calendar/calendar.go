package calendar

import "time"

type CalendarDay struct {
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
	IsToday   bool      `json:"is_today"`
}

type CalendarResponse struct {
	HabitID string         `json:"habit_id"`
	Year    int            `json:"year"`
	Month   int            `json:"month"`
	Days    []*CalendarDay `json:"days"`
}

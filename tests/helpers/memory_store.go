package helpers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"habitPilotAPI/internal/habit"
)

// MemoryHabitStore is an in-memory HabitStore with the same optimistic
// versioning contract as the Postgres implementation. Used to exercise the
// completion recorder's retry loop without a database.
type MemoryHabitStore struct {
	mu     sync.Mutex
	users  map[string]uuid.UUID
	habits map[uuid.UUID]*habit.Habit

	// CompletionWrites counts successful UpdateCompletion calls, letting
	// tests assert that idempotent re-completions perform no write.
	CompletionWrites int

	// FailCompletionWith, when set, makes every UpdateCompletion attempt
	// fail with the given error.
	FailCompletionWith error
}

func NewMemoryHabitStore() *MemoryHabitStore {
	return &MemoryHabitStore{
		users:  make(map[string]uuid.UUID),
		habits: make(map[uuid.UUID]*habit.Habit),
	}
}

func (s *MemoryHabitStore) AddUser(clerkID string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.users[clerkID] = id
	return id
}

func copyHabit(h *habit.Habit) *habit.Habit {
	clone := *h
	clone.CompletedDates = append([]string{}, h.CompletedDates...)
	if h.LastCompleted != nil {
		t := *h.LastCompleted
		clone.LastCompleted = &t
	}
	return &clone
}

func (s *MemoryHabitStore) ResolveUser(ctx context.Context, clerkID string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.users[clerkID]
	if !ok {
		return uuid.Nil, fmt.Errorf("user not found for clerk_id %s", clerkID)
	}
	return id, nil
}

func (s *MemoryHabitStore) Create(ctx context.Context, h *habit.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.habits[h.ID] = copyHabit(h)
	return nil
}

func (s *MemoryHabitStore) List(ctx context.Context, userID uuid.UUID) ([]*habit.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var habits []*habit.Habit
	for _, h := range s.habits {
		if h.UserID == userID {
			habits = append(habits, copyHabit(h))
		}
	}
	sort.Slice(habits, func(i, j int) bool {
		return habits[i].CreatedAt.After(habits[j].CreatedAt)
	})
	return habits, nil
}

func (s *MemoryHabitStore) Get(ctx context.Context, userID, habitID uuid.UUID) (*habit.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.habits[habitID]
	if !ok || h.UserID != userID {
		return nil, habit.ErrNotFound
	}
	return copyHabit(h), nil
}

func (s *MemoryHabitStore) UpdateFields(ctx context.Context, userID, habitID uuid.UUID, req *habit.UpdateHabitRequest) (*habit.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.habits[habitID]
	if !ok || h.UserID != userID {
		return nil, habit.ErrNotFound
	}

	if req.Name != nil {
		h.Name = *req.Name
	}
	if req.Description != nil {
		h.Description = *req.Description
	}
	if req.Goal != nil {
		h.Goal = *req.Goal
	}
	if req.Category != nil {
		h.Category = *req.Category
	}
	if req.Frequency != nil {
		h.Frequency = *req.Frequency
	}
	h.UpdatedAt = time.Now()

	return copyHabit(h), nil
}

func (s *MemoryHabitStore) Delete(ctx context.Context, userID, habitID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.habits[habitID]
	if !ok || h.UserID != userID {
		return habit.ErrNotFound
	}
	delete(s.habits, habitID)
	return nil
}

func (s *MemoryHabitStore) UpdateCompletion(ctx context.Context, userID, habitID uuid.UUID, version int64, dates []string, streakCount int, lastCompleted time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailCompletionWith != nil {
		return s.FailCompletionWith
	}

	h, ok := s.habits[habitID]
	if !ok || h.UserID != userID {
		return habit.ErrNotFound
	}
	if h.Version != version {
		return habit.ErrConflict
	}

	h.CompletedDates = append([]string{}, dates...)
	h.Streak = streakCount
	t := lastCompleted
	h.LastCompleted = &t
	h.Version++
	h.UpdatedAt = time.Now()
	s.CompletionWrites++

	return nil
}

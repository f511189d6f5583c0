package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitPilotAPI/internal/habit"
	"habitPilotAPI/internal/streak"
	"habitPilotAPI/tests/helpers"
)

var testNow = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

func newTestService(store *helpers.MemoryHabitStore) *HabitService {
	svc := NewHabitService(store, nil)
	svc.now = func() time.Time { return testNow }
	return svc
}

func seedHabit(t *testing.T, store *helpers.MemoryHabitStore, userID uuid.UUID, dates []string) *habit.Habit {
	t.Helper()

	h := &habit.Habit{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           "Morning run",
		Goal:           "Run before work",
		Category:       "fitness",
		Frequency:      habit.FrequencyDaily,
		Streak:         streak.Compute(dates, testNow),
		CompletedDates: dates,
		Version:        1,
		CreatedAt:      testNow.AddDate(0, 0, -30),
		UpdatedAt:      testNow.AddDate(0, 0, -30),
	}
	require.NoError(t, store.Create(context.Background(), h))
	return h
}

func TestCreateHabit(t *testing.T) {
	store := helpers.NewMemoryHabitStore()
	store.AddUser("user_clerk_1")
	svc := newTestService(store)

	created, err := svc.CreateHabit(context.Background(), "user_clerk_1", &habit.CreateHabitRequest{
		Name:      "Read",
		Goal:      "20 pages a day",
		Category:  "learning",
		Frequency: habit.FrequencyDaily,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, created.Streak)
	assert.Empty(t, created.CompletedDates)
	assert.Nil(t, created.LastCompleted)

	fetched, err := svc.GetHabit(context.Background(), "user_clerk_1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Read", fetched.Name)
}

func TestCreateHabit_InvalidFrequency(t *testing.T) {
	store := helpers.NewMemoryHabitStore()
	store.AddUser("user_clerk_1")
	svc := newTestService(store)

	_, err := svc.CreateHabit(context.Background(), "user_clerk_1", &habit.CreateHabitRequest{
		Name:      "Read",
		Frequency: "hourly",
	})
	assert.Error(t, err)

	_, err = svc.CreateHabit(context.Background(), "user_clerk_1", &habit.CreateHabitRequest{
		Frequency: habit.FrequencyDaily,
	})
	assert.Error(t, err, "empty name must be rejected")
}

func TestRecordCompletion_FirstToday(t *testing.T) {
	store := helpers.NewMemoryHabitStore()
	userID := store.AddUser("user_clerk_1")
	svc := newTestService(store)

	h := seedHabit(t, store, userID, []string{})

	result, err := svc.RecordCompletion(context.Background(), "user_clerk_1", h.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Streak)
	assert.True(t, result.CompletedToday)

	updated, err := svc.GetHabit(context.Background(), "user_clerk_1", h.ID)
	require.NoError(t, err)
	assert.Len(t, updated.CompletedDates, 1)
	assert.Equal(t, 1, updated.Streak)
	require.NotNil(t, updated.LastCompleted)
	assert.Equal(t, testNow, *updated.LastCompleted)
}

func TestRecordCompletion_ExtendsExistingRun(t *testing.T) {
	store := helpers.NewMemoryHabitStore()
	userID := store.AddUser("user_clerk_1")
	svc := newTestService(store)

	// Completed on T-1, T-2, T-3; completing today must yield streak 4
	// with four distinct calendar days on record.
	dates := []string{
		testNow.AddDate(0, 0, -1).Format(time.RFC3339),
		testNow.AddDate(0, 0, -2).Format(time.RFC3339),
		testNow.AddDate(0, 0, -3).Format(time.RFC3339),
	}
	h := seedHabit(t, store, userID, dates)

	result, err := svc.RecordCompletion(context.Background(), "user_clerk_1", h.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Streak)

	updated, err := svc.GetHabit(context.Background(), "user_clerk_1", h.ID)
	require.NoError(t, err)
	assert.Len(t, streak.DaySet(updated.CompletedDates), 4)
}

func TestRecordCompletion_IdempotentSameDay(t *testing.T) {
	store := helpers.NewMemoryHabitStore()
	userID := store.AddUser("user_clerk_1")
	svc := newTestService(store)

	h := seedHabit(t, store, userID, []string{})

	first, err := svc.RecordCompletion(context.Background(), "user_clerk_1", h.ID)
	require.NoError(t, err)

	afterFirst, err := svc.GetHabit(context.Background(), "user_clerk_1", h.ID)
	require.NoError(t, err)

	second, err := svc.RecordCompletion(context.Background(), "user_clerk_1", h.ID)
	require.NoError(t, err)

	afterSecond, err := svc.GetHabit(context.Background(), "user_clerk_1", h.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Streak, second.Streak)
	assert.Equal(t, afterFirst.CompletedDates, afterSecond.CompletedDates)
	assert.Equal(t, afterFirst.Streak, afterSecond.Streak)
	assert.Equal(t, afterFirst.LastCompleted, afterSecond.LastCompleted)
	assert.Equal(t, 1, store.CompletionWrites, "second same-day completion must not write")
}

func TestRecordCompletion_NotFound(t *testing.T) {
	store := helpers.NewMemoryHabitStore()
	store.AddUser("user_clerk_1")
	svc := newTestService(store)

	_, err := svc.RecordCompletion(context.Background(), "user_clerk_1", uuid.New())
	assert.ErrorIs(t, err, habit.ErrNotFound)
}

func TestRecordCompletion_OtherUsersHabitIsNotFound(t *testing.T) {
	store := helpers.NewMemoryHabitStore()
	ownerID := store.AddUser("user_owner")
	store.AddUser("user_intruder")
	svc := newTestService(store)

	h := seedHabit(t, store, ownerID, []string{})

	_, err := svc.RecordCompletion(context.Background(), "user_intruder", h.ID)
	assert.ErrorIs(t, err, habit.ErrNotFound)
}

func TestRecordCompletion_ConflictExhaustsRetries(t *testing.T) {
	store := helpers.NewMemoryHabitStore()
	userID := store.AddUser("user_clerk_1")
	svc := newTestService(store)

	h := seedHabit(t, store, userID, []string{})
	store.FailCompletionWith = habit.ErrConflict

	_, err := svc.RecordCompletion(context.Background(), "user_clerk_1", h.ID)
	assert.ErrorIs(t, err, habit.ErrConflict)
	assert.Equal(t, 0, store.CompletionWrites)
}

func TestRecordCompletion_ConcurrentSameHabit(t *testing.T) {
	store := helpers.NewMemoryHabitStore()
	userID := store.AddUser("user_clerk_1")
	svc := newTestService(store)

	h := seedHabit(t, store, userID, []string{
		testNow.AddDate(0, 0, -1).Format(time.RFC3339),
	})

	const racers = 8
	var wg sync.WaitGroup
	streaks := make([]int, racers)
	errs := make([]error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := svc.RecordCompletion(context.Background(), "user_clerk_1", h.ID)
			if err != nil {
				errs[i] = err
				return
			}
			streaks[i] = result.Streak
		}(i)
	}
	wg.Wait()

	for i := 0; i < racers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 2, streaks[i])
	}

	updated, err := svc.GetHabit(context.Background(), "user_clerk_1", h.ID)
	require.NoError(t, err)
	assert.Len(t, streak.DaySet(updated.CompletedDates), 2, "exactly one entry for today")
	assert.Equal(t, 2, updated.Streak)
	assert.Equal(t, 1, store.CompletionWrites, "only one racer may write")
}

func TestRecordCompletion_DifferentHabitsAreIndependent(t *testing.T) {
	store := helpers.NewMemoryHabitStore()
	userID := store.AddUser("user_clerk_1")
	svc := newTestService(store)

	first := seedHabit(t, store, userID, []string{})
	second := seedHabit(t, store, userID, []string{})

	var wg sync.WaitGroup
	results := make([]*habit.CompletionResponse, 2)
	errs := make([]error, 2)

	for i, id := range []uuid.UUID{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			results[i], errs[i] = svc.RecordCompletion(context.Background(), "user_clerk_1", id)
		}(i, id)
	}
	wg.Wait()

	for i := 0; i < 2; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 1, results[i].Streak)
	}
	assert.Equal(t, 2, store.CompletionWrites)
}

func TestUpdateHabit_NeverTouchesCompletionData(t *testing.T) {
	store := helpers.NewMemoryHabitStore()
	userID := store.AddUser("user_clerk_1")
	svc := newTestService(store)

	dates := []string{testNow.Format(time.RFC3339)}
	h := seedHabit(t, store, userID, dates)

	newName := "Evening run"
	newFrequency := habit.FrequencyWeekly
	updated, err := svc.UpdateHabit(context.Background(), "user_clerk_1", h.ID, &habit.UpdateHabitRequest{
		Name:      &newName,
		Frequency: &newFrequency,
	})
	require.NoError(t, err)

	assert.Equal(t, "Evening run", updated.Name)
	assert.Equal(t, habit.FrequencyWeekly, updated.Frequency)
	assert.Equal(t, dates, updated.CompletedDates)
	assert.Equal(t, h.Streak, updated.Streak)
}

func TestDeleteHabit(t *testing.T) {
	store := helpers.NewMemoryHabitStore()
	userID := store.AddUser("user_clerk_1")
	svc := newTestService(store)

	h := seedHabit(t, store, userID, []string{})

	require.NoError(t, svc.DeleteHabit(context.Background(), "user_clerk_1", h.ID))

	_, err := svc.GetHabit(context.Background(), "user_clerk_1", h.ID)
	assert.ErrorIs(t, err, habit.ErrNotFound)

	err = svc.DeleteHabit(context.Background(), "user_clerk_1", h.ID)
	assert.ErrorIs(t, err, habit.ErrNotFound)
}

func TestGetCalendar(t *testing.T) {
	store := helpers.NewMemoryHabitStore()
	userID := store.AddUser("user_clerk_1")
	svc := newTestService(store)

	h := seedHabit(t, store, userID, []string{
		testNow.Format(time.RFC3339),
		testNow.AddDate(0, 0, -1).Format(time.RFC3339),
		// outside the requested month
		testNow.AddDate(0, -1, 0).Format(time.RFC3339),
	})

	cal, err := svc.GetCalendar(context.Background(), "user_clerk_1", h.ID, 2026, 3)
	require.NoError(t, err)

	assert.Len(t, cal.Days, 31)

	completed := 0
	for _, day := range cal.Days {
		if day.Completed {
			completed++
		}
		if day.IsToday {
			assert.Equal(t, 15, day.Date.Day())
		}
	}
	assert.Equal(t, 2, completed)
}

func TestGetUserStats(t *testing.T) {
	store := helpers.NewMemoryHabitStore()
	userID := store.AddUser("user_clerk_1")
	svc := newTestService(store)

	// Done today and yesterday: current streak 2.
	seedHabit(t, store, userID, []string{
		testNow.Format(time.RFC3339),
		testNow.AddDate(0, 0, -1).Format(time.RFC3339),
	})
	// Long run that ended a week ago: current streak 0, longest 5.
	var stale []string
	for i := 7; i < 12; i++ {
		stale = append(stale, testNow.AddDate(0, 0, -i).Format(time.RFC3339))
	}
	seedHabit(t, store, userID, stale)

	userStats, err := svc.GetUserStats(context.Background(), "user_clerk_1")
	require.NoError(t, err)

	assert.Equal(t, 2, userStats.TotalHabits)
	assert.Equal(t, 1, userStats.CompletedToday)
	assert.Equal(t, 2, userStats.BestCurrentStreak)
	assert.Equal(t, 5, userStats.LongestStreakEver)
	assert.Equal(t, 7, userStats.TotalCompletions)
	assert.Len(t, userStats.Habits, 2)
}

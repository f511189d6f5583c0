package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitPilotAPI/internal/habit"
	"habitPilotAPI/middleware"
	"habitPilotAPI/services"
	"habitPilotAPI/tests/helpers"
)

const testClerkID = "user_2abc123"

func newHabitTestEnv() (*HabitHandler, *helpers.MemoryHabitStore, uuid.UUID) {
	store := helpers.NewMemoryHabitStore()
	userID := store.AddUser(testClerkID)
	svc := services.NewHabitService(store, nil)
	return NewHabitHandler(svc), store, userID
}

func authedRequest(method, target string, body []byte, vars map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.ClerkIDKey, testClerkID)
	req = req.WithContext(ctx)
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func TestCreateHabitHandler(t *testing.T) {
	handler, _, _ := newHabitTestEnv()

	body, _ := json.Marshal(habit.CreateHabitRequest{
		Name:      "Meditate",
		Goal:      "10 minutes daily",
		Category:  "mindfulness",
		Frequency: habit.FrequencyDaily,
	})

	rr := httptest.NewRecorder()
	handler.CreateHabit(rr, authedRequest("POST", "/api/v1/habits", body, nil))

	require.Equal(t, http.StatusCreated, rr.Code)

	var created habit.Habit
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.Equal(t, "Meditate", created.Name)
	assert.Equal(t, 0, created.Streak)
}

func TestCreateHabitHandler_InvalidBody(t *testing.T) {
	handler, _, _ := newHabitTestEnv()

	rr := httptest.NewRecorder()
	handler.CreateHabit(rr, authedRequest("POST", "/api/v1/habits", []byte("{not json"), nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetHabitsHandler_Unauthenticated(t *testing.T) {
	handler, _, _ := newHabitTestEnv()

	rr := httptest.NewRecorder()
	// No Clerk ID in context.
	handler.GetHabits(rr, httptest.NewRequest("GET", "/api/v1/habits", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetHabitsHandler_EmptyListIsArray(t *testing.T) {
	handler, _, _ := newHabitTestEnv()

	rr := httptest.NewRecorder()
	handler.GetHabits(rr, authedRequest("GET", "/api/v1/habits", nil, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", string(bytes.TrimSpace(rr.Body.Bytes())))
}

func TestCompleteHabitHandler(t *testing.T) {
	handler, store, userID := newHabitTestEnv()

	h := &habit.Habit{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           "Meditate",
		Frequency:      habit.FrequencyDaily,
		CompletedDates: []string{},
		Version:        1,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, store.Create(context.Background(), h))

	rr := httptest.NewRecorder()
	req := authedRequest("POST", "/api/v1/habits/"+h.ID.String()+"/complete", nil,
		map[string]string{"habitID": h.ID.String()})
	handler.CompleteHabit(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var result habit.CompletionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
	assert.Equal(t, h.ID, result.HabitID)
	assert.Equal(t, 1, result.Streak)
	assert.True(t, result.CompletedToday)
}

func TestCompleteHabitHandler_NotFound(t *testing.T) {
	handler, _, _ := newHabitTestEnv()

	missing := uuid.New()
	rr := httptest.NewRecorder()
	req := authedRequest("POST", "/api/v1/habits/"+missing.String()+"/complete", nil,
		map[string]string{"habitID": missing.String()})
	handler.CompleteHabit(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCompleteHabitHandler_InvalidID(t *testing.T) {
	handler, _, _ := newHabitTestEnv()

	rr := httptest.NewRecorder()
	req := authedRequest("POST", "/api/v1/habits/not-a-uuid/complete", nil,
		map[string]string{"habitID": "not-a-uuid"})
	handler.CompleteHabit(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetCalendarHandler_BadMonth(t *testing.T) {
	handler, store, userID := newHabitTestEnv()

	h := &habit.Habit{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      "Meditate",
		Frequency: habit.FrequencyDaily,
		Version:   1,
	}
	require.NoError(t, store.Create(context.Background(), h))

	rr := httptest.NewRecorder()
	req := authedRequest("GET", "/api/v1/habits/"+h.ID.String()+"/calendar?month=13", nil,
		map[string]string{"habitID": h.ID.String()})
	handler.GetCalendar(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

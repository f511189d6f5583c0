package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"habitPilotAPI/internal/habit"
	"habitPilotAPI/middleware"
	"habitPilotAPI/services"
)

type HabitHandler struct {
	habitService *services.HabitService
}

func NewHabitHandler(habitService *services.HabitService) *HabitHandler {
	return &HabitHandler{
		habitService: habitService,
	}
}

func (h *HabitHandler) GetHabits(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habits, err := h.habitService.GetHabits(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Could not fetch habits")
		return
	}

	if habits == nil {
		habits = []*habit.Habit{}
	}

	respondWithJSON(w, http.StatusOK, habits)
}

func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req habit.CreateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.habitService.CreateHabit(ctx, clerkID, &req)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HabitHandler) GetHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitID, ok := habitIDFromRequest(w, r)
	if !ok {
		return
	}

	found, err := h.habitService.GetHabit(ctx, clerkID, habitID)
	if err != nil {
		if errors.Is(err, habit.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Habit not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Could not fetch habit")
		return
	}

	respondWithJSON(w, http.StatusOK, found)
}

func (h *HabitHandler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitID, ok := habitIDFromRequest(w, r)
	if !ok {
		return
	}

	var req habit.UpdateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.habitService.UpdateHabit(ctx, clerkID, habitID, &req)
	if err != nil {
		if errors.Is(err, habit.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Habit not found")
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HabitHandler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitID, ok := habitIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.habitService.DeleteHabit(ctx, clerkID, habitID); err != nil {
		if errors.Is(err, habit.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Habit not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Could not delete habit")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Habit deleted successfully"})
}

// CompleteHabit records today's completion and returns the new streak.
func (h *HabitHandler) CompleteHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitID, ok := habitIDFromRequest(w, r)
	if !ok {
		return
	}

	result, err := h.habitService.RecordCompletion(ctx, clerkID, habitID)
	if err != nil {
		switch {
		case errors.Is(err, habit.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Habit not found")
		case errors.Is(err, habit.ErrConflict):
			middleware.CountCompletionConflict()
			respondWithError(w, http.StatusConflict, "Completion conflicted with a concurrent update, try again")
		default:
			respondWithError(w, http.StatusInternalServerError, "Could not record completion")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *HabitHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitID, ok := habitIDFromRequest(w, r)
	if !ok {
		return
	}

	now := time.Now()
	year, err := queryInt(r, "year", now.Year())
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid 'year' query parameter")
		return
	}
	month, err := queryInt(r, "month", int(now.Month()))
	if err != nil || month < 1 || month > 12 {
		respondWithError(w, http.StatusBadRequest, "Invalid 'month' query parameter")
		return
	}

	cal, err := h.habitService.GetCalendar(ctx, clerkID, habitID, year, month)
	if err != nil {
		if errors.Is(err, habit.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Habit not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Could not fetch calendar")
		return
	}

	respondWithJSON(w, http.StatusOK, cal)
}

func (h *HabitHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	userStats, err := h.habitService.GetUserStats(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Could not fetch stats")
		return
	}

	respondWithJSON(w, http.StatusOK, userStats)
}

func habitIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	habitID, err := uuid.Parse(mux.Vars(r)["habitID"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid habit ID")
		return uuid.Nil, false
	}
	return habitID, true
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"habitPilotAPI/internal/insights"
	"habitPilotAPI/middleware"
	"habitPilotAPI/services"
)

type AIHandler struct {
	aiService *services.AIService
}

func NewAIHandler(aiService *services.AIService) *AIHandler {
	return &AIHandler{
		aiService: aiService,
	}
}

// GenerateInsight proxies a motivational prompt to the language-model API.
func (h *AIHandler) GenerateInsight(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req insights.InsightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Prompt == "" {
		respondWithError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	message, err := h.aiService.GenerateInsight(ctx, req.Prompt)
	if err != nil {
		log.Printf("AI insight request failed for %s: %v", clerkID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch AI insights")
		return
	}

	respondWithJSON(w, http.StatusOK, insights.InsightResponse{Message: message})
}

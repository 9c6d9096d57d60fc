package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/projektl/projekt-l-backend/internal/requestdata"
	"github.com/projektl/projekt-l-backend/internal/services"
)

type OnboardingHandler struct {
	analysisService   services.AnalysisService
	onboardingService services.OnboardingService
}

func NewOnboardingHandler(analysisService services.AnalysisService, onboardingService services.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{
		analysisService:   analysisService,
		onboardingService: onboardingService,
	}
}

// Analyze runs the AI onboarding analysis. Model failures degrade to the
// deterministic fallback, so the only error responses here are bad input
// and the rate limit. ?fallback=true skips the model entirely.
func (oh *OnboardingHandler) Analyze(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	if userID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("not authenticated"))
		return
	}

	var req services.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.FactionRatings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "factionRatings is required"})
		return
	}

	forceFallback := c.Query("fallback") == "true"
	result, fallbackUsed, err := oh.analysisService.Analyze(c.Request.Context(), userID, req, forceFallback)
	if err != nil {
		if errors.Is(err, services.ErrRateLimited) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded, try again later"})
			return
		}
		RespondError(c, http.StatusInternalServerError, "analysis_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result, "fallback": fallbackUsed})
}

// Complete finalizes onboarding. The body's userId must match the
// authenticated user; on mismatch nothing is written.
func (oh *OnboardingHandler) Complete(c *gin.Context) {
	authedID := requestdata.UserID(c.Request.Context())
	if authedID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("not authenticated"))
		return
	}

	var req struct {
		UserID string                  `json:"userId"`
		Data   services.OnboardingData `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.UserID != authedID.String() {
		c.JSON(http.StatusForbidden, gin.H{"error": "userId does not match authenticated user"})
		return
	}

	result, err := oh.onboardingService.Complete(c.Request.Context(), authedID, req.Data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete onboarding"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"characterClass": result.CharacterClass,
		"totalLevel":     result.TotalLevel,
		"skippedSkills":  result.SkippedSkills,
		"message":        "Onboarding abgeschlossen! Dein Abenteuer beginnt.",
	})
}

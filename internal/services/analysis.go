package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/repos"
)

// ErrRateLimited is returned when a user exhausts the analyze budget; the
// handler maps it to 429.
var ErrRateLimited = errors.New("rate limit exceeded")

const (
	analyzeRateLimit  = 5
	analyzeRateWindow = time.Hour
	analyzeTimeout    = 25 * time.Second
)

type FactionRating struct {
	FactionID       string  `json:"faction_id"`
	Importance      int     `json:"importance"`
	CurrentStatus   int     `json:"current_status"`
	YearsExperience float64 `json:"years_experience"`
}

type AnalyzeRequest struct {
	FactionRatings []FactionRating `json:"factionRatings"`
	TellMeAboutYou string          `json:"tellMeAboutYou"`
}

type RecommendedSkill struct {
	Name       string `json:"name"`
	FactionID  string `json:"faction_id"`
	Experience string `json:"experience"`
}

type RecommendedHabit struct {
	Name      string `json:"name"`
	FactionID string `json:"faction_id"`
	HabitType string `json:"habit_type"`
}

type AIAnalysisResult struct {
	FactionLevels     map[string]int     `json:"faction_levels"`
	CharacterClass    string             `json:"character_class"`
	RecommendedSkills []RecommendedSkill `json:"recommended_skills"`
	RecommendedHabits []RecommendedHabit `json:"recommended_habits"`
	Summary           string             `json:"summary"`
}

type AnalysisService interface {
	// Analyze returns the analysis plus whether the deterministic fallback
	// produced it. Model failures never surface to the caller; only the
	// rate limit does.
	Analyze(ctx context.Context, userID uuid.UUID, req AnalyzeRequest, forceFallback bool) (*AIAnalysisResult, bool, error)
}

type analysisService struct {
	log       *logger.Logger
	model     ModelClient
	limiter   RateLimiter
	aiLogRepo repos.AICallLogRepo
}

func NewAnalysisService(log *logger.Logger, model ModelClient, limiter RateLimiter, aiLogRepo repos.AICallLogRepo) AnalysisService {
	return &analysisService{
		log:       log.With("service", "AnalysisService"),
		model:     model,
		limiter:   limiter,
		aiLogRepo: aiLogRepo,
	}
}

func (s *analysisService) Analyze(ctx context.Context, userID uuid.UUID, req AnalyzeRequest, forceFallback bool) (*AIAnalysisResult, bool, error) {
	if len(req.FactionRatings) == 0 {
		return nil, false, fmt.Errorf("factionRatings are required")
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, "onboarding_analyze:"+userID.String(), analyzeRateLimit, analyzeRateWindow)
		if err != nil {
			// A broken limiter should not take the endpoint down.
			s.log.Warn("Rate limiter unavailable, allowing request", "error", err)
		} else if !allowed {
			return nil, false, ErrRateLimited
		}
	}

	if forceFallback || s.model == nil {
		return fallbackAnalysis(req), true, nil
	}

	result, err := s.analyzeWithModel(ctx, userID, req)
	if err != nil {
		s.log.Warn("Model analysis failed, using fallback", "user_id", userID, "error", err)
		return fallbackAnalysis(req), true, nil
	}
	return result, false, nil
}

func (s *analysisService) analyzeWithModel(ctx context.Context, userID uuid.UUID, req AnalyzeRequest) (*AIAnalysisResult, error) {
	system := "Du bist ein Coach für ein gamifiziertes Lebensmanagement-System. " +
		"Antworte ausschließlich mit einem JSON-Objekt, ohne weiteren Text."
	prompt := buildAnalysisPrompt(req)

	callCtx, cancel := context.WithTimeout(ctx, analyzeTimeout)
	defer cancel()

	raw, err := s.model.Complete(callCtx, system, prompt, 2048)
	recordAICall(ctx, s.log, s.aiLogRepo, userID, "onboarding_analyze", s.model.Model(), prompt, raw, err)
	if err != nil {
		return nil, err
	}

	var result AIAnalysisResult
	decoded := false
	for _, candidate := range extractJSONCandidates(raw) {
		if candidate == "" {
			continue
		}
		if jErr := json.Unmarshal([]byte(candidate), &result); jErr == nil && len(result.FactionLevels) > 0 {
			decoded = true
			break
		}
	}
	if !decoded {
		return nil, fmt.Errorf("model response did not contain a usable analysis")
	}

	// Levels are clamped locally; the model is not trusted with bounds.
	for factionID, level := range result.FactionLevels {
		if level < 1 {
			result.FactionLevels[factionID] = 1
		}
		if level > 100 {
			result.FactionLevels[factionID] = 100
		}
	}
	return &result, nil
}

func buildAnalysisPrompt(req AnalyzeRequest) string {
	payload, _ := json.Marshal(req.FactionRatings)
	return fmt.Sprintf(
		"Der Nutzer hat folgende Selbsteinschätzung abgegeben (Wichtigkeit 1-5, Status 1-10):\n%s\n\n"+
			"Über sich selbst schreibt er: %q\n\n"+
			"Erzeuge ein JSON-Objekt mit den Feldern faction_levels (Map von Fraktions-ID auf Level 1-100), "+
			"character_class, recommended_skills (name, faction_id, experience: beginner|intermediate|expert), "+
			"recommended_habits (name, faction_id, habit_type: positive|negative) und summary.",
		payload, req.TellMeAboutYou,
	)
}

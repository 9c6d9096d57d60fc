package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/projektl/projekt-l-backend/internal/requestdata"
	"github.com/projektl/projekt-l-backend/internal/services"
)

type fakeOnboardingService struct {
	completeCalls int
	result        *services.OnboardingResult
	err           error
}

func (f *fakeOnboardingService) Complete(ctx context.Context, userID uuid.UUID, data services.OnboardingData) (*services.OnboardingResult, error) {
	f.completeCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeAnalysisService struct {
	err error
}

func (f *fakeAnalysisService) Analyze(ctx context.Context, userID uuid.UUID, req services.AnalyzeRequest, forceFallback bool) (*services.AIAnalysisResult, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return &services.AIAnalysisResult{FactionLevels: map[string]int{"karriere": 30}}, forceFallback, nil
}

func setupOnboardingRouter(userID uuid.UUID, analysis services.AnalysisService, onboarding services.OnboardingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewOnboardingHandler(analysis, onboarding)

	authed := func(c *gin.Context) {
		ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{UserID: userID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
	router.POST("/api/onboarding/analyze", authed, handler.Analyze)
	router.POST("/api/onboarding/complete", authed, handler.Complete)
	return router
}

func TestCompleteRejectsMismatchedUserWithoutWriting(t *testing.T) {
	authedID := uuid.New()
	svc := &fakeOnboardingService{result: &services.OnboardingResult{CharacterClass: "Händler", TotalLevel: 12}}
	router := setupOnboardingRouter(authedID, &fakeAnalysisService{}, svc)

	body := fmt.Sprintf(`{"userId":%q,"data":{"factionRatings":[{"faction_id":"karriere","importance":5,"current_status":6}]}}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/api/onboarding/complete", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if svc.completeCalls != 0 {
		t.Fatalf("Complete was called %d times, want 0", svc.completeCalls)
	}
}

func TestCompleteSuccessShape(t *testing.T) {
	authedID := uuid.New()
	svc := &fakeOnboardingService{result: &services.OnboardingResult{CharacterClass: "Händler", TotalLevel: 12, SkippedSkills: []string{}}}
	router := setupOnboardingRouter(authedID, &fakeAnalysisService{}, svc)

	body := fmt.Sprintf(`{"userId":%q,"data":{"factionRatings":[{"faction_id":"karriere","importance":5,"current_status":6}]}}`, authedID)
	req := httptest.NewRequest(http.MethodPost, "/api/onboarding/complete", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	if svc.completeCalls != 1 {
		t.Fatalf("Complete was called %d times, want 1", svc.completeCalls)
	}
	for _, key := range []string{`"success":true`, `"characterClass":"Händler"`, `"totalLevel":12`} {
		if !strings.Contains(w.Body.String(), key) {
			t.Errorf("response missing %s: %s", key, w.Body.String())
		}
	}
}

func TestCompleteCoreFailureReturns500(t *testing.T) {
	authedID := uuid.New()
	svc := &fakeOnboardingService{err: fmt.Errorf("db down")}
	router := setupOnboardingRouter(authedID, &fakeAnalysisService{}, svc)

	body := fmt.Sprintf(`{"userId":%q,"data":{}}`, authedID)
	req := httptest.NewRequest(http.MethodPost, "/api/onboarding/complete", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Failed to complete onboarding") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestAnalyzeRateLimitedReturns429(t *testing.T) {
	router := setupOnboardingRouter(uuid.New(), &fakeAnalysisService{err: services.ErrRateLimited}, &fakeOnboardingService{})

	body := `{"factionRatings":[{"faction_id":"karriere","importance":5,"current_status":6}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/onboarding/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
}

func TestAnalyzeFallbackQueryParam(t *testing.T) {
	router := setupOnboardingRouter(uuid.New(), &fakeAnalysisService{}, &fakeOnboardingService{})

	body := `{"factionRatings":[{"faction_id":"karriere","importance":5,"current_status":6}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/onboarding/analyze?fallback=true", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"fallback":true`) {
		t.Errorf("response missing fallback flag: %s", w.Body.String())
	}
}

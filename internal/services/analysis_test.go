package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/projektl/projekt-l-backend/internal/types"
)

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return false, nil
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return false, errors.New("redis down")
}

func sampleRatings() []FactionRating {
	return []FactionRating{
		{FactionID: types.FactionKarriere, Importance: 5, CurrentStatus: 6, YearsExperience: 4},
		{FactionID: types.FactionFinanzen, Importance: 4, CurrentStatus: 3, YearsExperience: 2},
		{FactionID: types.FactionKoerper, Importance: 2, CurrentStatus: 5, YearsExperience: 1},
	}
}

func TestAnalyzeRateLimited(t *testing.T) {
	svc := NewAnalysisService(testLogger(t), nil, denyAllLimiter{}, nil)
	_, _, err := svc.Analyze(context.Background(), uuid.New(), AnalyzeRequest{FactionRatings: sampleRatings()}, false)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
}

func TestAnalyzeBrokenLimiterAllowsRequest(t *testing.T) {
	svc := NewAnalysisService(testLogger(t), nil, brokenLimiter{}, nil)
	result, fallback, err := svc.Analyze(context.Background(), uuid.New(), AnalyzeRequest{FactionRatings: sampleRatings()}, false)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !fallback || result == nil {
		t.Fatal("want fallback result when limiter is down and no model is configured")
	}
}

func TestAnalyzeModelFailureDegradesToFallback(t *testing.T) {
	model := &fakeModel{errs: []error{errors.New("overloaded")}}
	svc := NewAnalysisService(testLogger(t), model, NewMemoryRateLimiter(), &fakeAILogRepo{})

	result, fallback, err := svc.Analyze(context.Background(), uuid.New(), AnalyzeRequest{FactionRatings: sampleRatings()}, false)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !fallback {
		t.Fatal("want fallback on model failure")
	}
	if len(result.FactionLevels) != 3 {
		t.Errorf("FactionLevels = %v, want 3 entries", result.FactionLevels)
	}
}

func TestAnalyzeUsesModelResult(t *testing.T) {
	model := &fakeModel{responses: []string{`{"faction_levels":{"karriere":240},"character_class":"Händler","summary":"ok"}`}}
	svc := NewAnalysisService(testLogger(t), model, NewMemoryRateLimiter(), &fakeAILogRepo{})

	result, fallback, err := svc.Analyze(context.Background(), uuid.New(), AnalyzeRequest{FactionRatings: sampleRatings()}, false)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if fallback {
		t.Fatal("model result should not be flagged as fallback")
	}
	if result.CharacterClass != "Händler" {
		t.Errorf("CharacterClass = %q", result.CharacterClass)
	}
	// Levels from the model are clamped into the valid range.
	if got := result.FactionLevels[types.FactionKarriere]; got != 100 {
		t.Errorf("karriere level = %d, want clamped 100", got)
	}
}

func TestFallbackAnalysisDeterministic(t *testing.T) {
	req := AnalyzeRequest{FactionRatings: sampleRatings()}
	a := fallbackAnalysis(req)
	b := fallbackAnalysis(req)

	if a.CharacterClass != b.CharacterClass {
		t.Fatalf("character class not stable: %q vs %q", a.CharacterClass, b.CharacterClass)
	}
	// karriere+finanzen are the two most important factions here.
	if a.CharacterClass != "Händler" {
		t.Errorf("CharacterClass = %q, want Händler", a.CharacterClass)
	}
	for faction, level := range a.FactionLevels {
		if b.FactionLevels[faction] != level {
			t.Errorf("level for %s not stable: %d vs %d", faction, level, b.FactionLevels[faction])
		}
		if level < 1 || level > 100 {
			t.Errorf("level for %s out of range: %d", faction, level)
		}
	}
	if len(a.RecommendedSkills) == 0 || len(a.RecommendedHabits) == 0 {
		t.Error("fallback should recommend skills and habits")
	}
}

func TestForcedFallbackSkipsModel(t *testing.T) {
	model := &fakeModel{responses: []string{`{"faction_levels":{"karriere":50}}`}}
	svc := NewAnalysisService(testLogger(t), model, NewMemoryRateLimiter(), &fakeAILogRepo{})

	_, fallback, err := svc.Analyze(context.Background(), uuid.New(), AnalyzeRequest{FactionRatings: sampleRatings()}, true)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !fallback {
		t.Fatal("want fallback when forced")
	}
	if model.calls != 0 {
		t.Errorf("model calls = %d, want 0", model.calls)
	}
}

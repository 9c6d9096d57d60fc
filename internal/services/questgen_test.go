package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/repos"
	"github.com/projektl/projekt-l-backend/internal/types"
)

type fakeModel struct {
	responses []string
	errs      []error
	calls     int
}

func (m *fakeModel) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	i := m.calls
	m.calls++
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return "", fmt.Errorf("no response configured for call %d", i)
}

func (m *fakeModel) Model() string { return "fake-model" }

type fakeSkillRepo struct {
	skills  []*types.UserSkill
	created []*types.UserSkill
}

func (r *fakeSkillRepo) CreateMany(ctx context.Context, tx *gorm.DB, skills []*types.UserSkill) error {
	r.created = append(r.created, skills...)
	return nil
}
func (r *fakeSkillRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserSkill, error) {
	return r.skills, nil
}
func (r *fakeSkillRepo) GetRecentlyUsed(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.UserSkill, error) {
	return r.skills, nil
}
func (r *fakeSkillRepo) Save(ctx context.Context, tx *gorm.DB, skill *types.UserSkill) error {
	return nil
}

type fakeStatRepo struct {
	stats []*types.FactionStat
}

func (r *fakeStatRepo) Upsert(ctx context.Context, tx *gorm.DB, stat *types.FactionStat) error {
	return nil
}
func (r *fakeStatRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.FactionStat, error) {
	return r.stats, nil
}
func (r *fakeStatRepo) GetByUserAndFaction(ctx context.Context, tx *gorm.DB, userID uuid.UUID, factionID string) (*types.FactionStat, error) {
	return nil, nil
}
func (r *fakeStatRepo) Save(ctx context.Context, tx *gorm.DB, stat *types.FactionStat) error {
	return nil
}

type fakePrefsRepo struct {
	prefs *types.QuestPreferences
}

func (r *fakePrefsRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.QuestPreferences, error) {
	return r.prefs, nil
}
func (r *fakePrefsRepo) Upsert(ctx context.Context, tx *gorm.DB, prefs *types.QuestPreferences) error {
	return nil
}

type fakeActivityRepo struct {
	entries []*types.ActivityLog
}

func (r *fakeActivityRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.ActivityLog) error {
	r.entries = append(r.entries, entry)
	return nil
}
func (r *fakeActivityRepo) GetRecent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ActivityLog, error) {
	return nil, nil
}

type fakeQuestRepo struct {
	created []*types.Quest
}

func (r *fakeQuestRepo) Create(ctx context.Context, tx *gorm.DB, quest *types.Quest) error {
	r.created = append(r.created, quest)
	return nil
}
func (r *fakeQuestRepo) CreateMany(ctx context.Context, tx *gorm.DB, quests []*types.Quest) error {
	r.created = append(r.created, quests...)
	return nil
}
func (r *fakeQuestRepo) GetByID(ctx context.Context, tx *gorm.DB, questID uuid.UUID) (*types.Quest, error) {
	return nil, nil
}
func (r *fakeQuestRepo) GetActiveByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Quest, error) {
	return nil, nil
}
func (r *fakeQuestRepo) Save(ctx context.Context, tx *gorm.DB, quest *types.Quest) error {
	return nil
}
func (r *fakeQuestRepo) Delete(ctx context.Context, tx *gorm.DB, questID uuid.UUID) error {
	return nil
}
func (r *fakeQuestRepo) ExpireOverdue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time) (int64, error) {
	return 0, nil
}

type fakeAILogRepo struct{}

func (r *fakeAILogRepo) Create(ctx context.Context, tx *gorm.DB, row *types.AICallLog) error {
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func newTestQuestGen(t *testing.T, model ModelClient, skillRepo repos.UserSkillRepo, statRepo repos.FactionStatRepo, questRepo repos.QuestRepo) QuestGenService {
	t.Helper()
	return NewQuestGenService(
		nil, testLogger(t), model,
		skillRepo, statRepo,
		&fakePrefsRepo{}, &fakeActivityRepo{}, questRepo, &fakeAILogRepo{},
	)
}

func TestParseQuestResponse(t *testing.T) {
	quest := `{"title":"Lauf 5km","description":"","difficulty":"medium","target_skill_ids":[],"target_faction_ids":[],"required_actions":1}`

	tests := []struct {
		name string
		raw  string
		want int
	}{
		{
			name: "json fence",
			raw:  "Hier sind die Quests:\n```json\n{\"quests\":[" + quest + "]}\n```",
			want: 1,
		},
		{
			name: "generic fence",
			raw:  "```\n{\"quests\":[" + quest + "," + quest + "]}\n```",
			want: 2,
		},
		{
			name: "embedded object without fences",
			raw:  "Gerne! {\"quests\":[" + quest + "]} Viel Erfolg!",
			want: 1,
		},
		{
			name: "raw object",
			raw:  "{\"quests\":[" + quest + "]}",
			want: 1,
		},
		{
			name: "bare array",
			raw:  "[" + quest + "]",
			want: 1,
		},
		{
			name: "empty quests array is a valid answer",
			raw:  "{\"quests\": []}",
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quests, err := parseQuestResponse(tt.raw)
			if err != nil {
				t.Fatalf("parseQuestResponse() error = %v", err)
			}
			if len(quests) != tt.want {
				t.Fatalf("got %d quests, want %d", len(quests), tt.want)
			}
		})
	}
}

func TestParseQuestResponseUnusable(t *testing.T) {
	raw := strings.Repeat("kein json hier ", 100)
	_, err := parseQuestResponse(raw)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want *ParseError, got %v", err)
	}
	if len(pe.Preview) > rawPreviewLimit {
		t.Fatalf("preview length %d exceeds %d", len(pe.Preview), rawPreviewLimit)
	}
}

func TestMaterializeDropsUnknownIDs(t *testing.T) {
	skillID := uuid.New()
	qc := &QuestContext{
		Skills:       []*types.UserSkill{{ID: skillID, Name: "Laufen", FactionID: types.FactionKoerper}},
		FactionStats: []*types.FactionStat{{FactionID: types.FactionKoerper}},
		Preferences:  defaultQuestPreferences(uuid.New()),
	}
	svc := &questGenService{log: testLogger(t), model: &fakeModel{}}

	bogusSkill := uuid.New().String()
	generated := []GeneratedQuest{{
		Title:            "Trainiere",
		Difficulty:       "hard",
		TargetSkillIDs:   []string{skillID.String(), bogusSkill},
		TargetFactionIDs: []string{types.FactionKoerper, "unterwelt"},
	}}

	result := svc.materialize(uuid.New(), types.QuestTypeDaily, qc, generated)

	if len(result.Quests) != 1 {
		t.Fatalf("got %d quests, want 1", len(result.Quests))
	}
	if got := result.DroppedSkillIDs; len(got) != 1 || got[0] != bogusSkill {
		t.Errorf("DroppedSkillIDs = %v", got)
	}
	if got := result.DroppedFactionIDs; len(got) != 1 || got[0] != "unterwelt" {
		t.Errorf("DroppedFactionIDs = %v", got)
	}

	q := result.Quests[0]
	if q.XPReward != 150 {
		t.Errorf("XPReward = %d, want 150 for daily/hard", q.XPReward)
	}
	if q.RequiredActions != 1 {
		t.Errorf("RequiredActions = %d, want 1", q.RequiredActions)
	}
	if q.ExpiresAt == nil {
		t.Fatal("daily quest should have an expiry")
	}
	until := time.Until(*q.ExpiresAt)
	if until < 23*time.Hour || until > 25*time.Hour {
		t.Errorf("daily expiry %v from now, want ~24h", until)
	}
}

func TestMaterializeInvalidDifficultyFallsBackToPreference(t *testing.T) {
	qc := &QuestContext{Preferences: &types.QuestPreferences{PreferredDifficulty: types.QuestDifficultyEasy}}
	svc := &questGenService{log: testLogger(t), model: &fakeModel{}}

	result := svc.materialize(uuid.New(), types.QuestTypeWeekly, qc, []GeneratedQuest{{Title: "Lies ein Buch", Difficulty: "legendary"}})
	if got := result.Quests[0].Difficulty; got != types.QuestDifficultyEasy {
		t.Errorf("Difficulty = %q, want %q", got, types.QuestDifficultyEasy)
	}
}

func TestGenerateRetriesOnceOnTimeout(t *testing.T) {
	model := &fakeModel{
		errs:      []error{context.DeadlineExceeded, nil},
		responses: []string{"", `{"quests":[{"title":"Meditiere","difficulty":"easy","required_actions":1}]}`},
	}
	questRepo := &fakeQuestRepo{}
	svc := newTestQuestGen(t, model, &fakeSkillRepo{}, &fakeStatRepo{}, questRepo)

	result, err := svc.Generate(context.Background(), uuid.New(), types.QuestTypeDaily, 1)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if model.calls != 2 {
		t.Errorf("model calls = %d, want 2", model.calls)
	}
	if len(result.Quests) != 1 || len(questRepo.created) != 1 {
		t.Errorf("got %d quests (%d persisted), want 1", len(result.Quests), len(questRepo.created))
	}
}

func TestGenerateAcceptsEmptyQuestsArray(t *testing.T) {
	model := &fakeModel{
		responses: []string{"```json\n{\"quests\": []}\n```"},
	}
	questRepo := &fakeQuestRepo{}
	svc := newTestQuestGen(t, model, &fakeSkillRepo{}, &fakeStatRepo{}, questRepo)

	result, err := svc.Generate(context.Background(), uuid.New(), types.QuestTypeDaily, 1)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(result.Quests) != 0 || len(questRepo.created) != 0 {
		t.Errorf("got %d quests (%d persisted), want 0", len(result.Quests), len(questRepo.created))
	}
}

func TestGenerateDoesNotRetryOtherErrors(t *testing.T) {
	model := &fakeModel{errs: []error{fmt.Errorf("api key invalid")}}
	svc := newTestQuestGen(t, model, &fakeSkillRepo{}, &fakeStatRepo{}, &fakeQuestRepo{})

	_, err := svc.Generate(context.Background(), uuid.New(), types.QuestTypeDaily, 1)
	if err == nil {
		t.Fatal("want error")
	}
	if model.calls != 1 {
		t.Errorf("model calls = %d, want 1", model.calls)
	}
}

func TestGenerateRejectsInvalidType(t *testing.T) {
	svc := newTestQuestGen(t, &fakeModel{}, &fakeSkillRepo{}, &fakeStatRepo{}, &fakeQuestRepo{})
	if _, err := svc.Generate(context.Background(), uuid.New(), "hourly", 1); err == nil {
		t.Fatal("want error for invalid quest type")
	}
}

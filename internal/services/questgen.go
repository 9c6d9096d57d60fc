package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/projektl/projekt-l-backend/internal/httpx"
	"github.com/projektl/projekt-l-backend/internal/leveling"
	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/repos"
	"github.com/projektl/projekt-l-backend/internal/types"
)

const (
	questGenTimeout    = 25 * time.Second
	questContextSkills = 20
	questContextEvents = 10
	rawPreviewLimit    = 500
)

// ParseError marks model output that none of the extraction strategies
// could decode.
type ParseError struct {
	Preview string
}

func (e *ParseError) Error() string {
	return "failed to parse quest response"
}

// QuestContext is the read-only snapshot rendered into the prompt.
type QuestContext struct {
	Skills         []*types.UserSkill
	FactionStats   []*types.FactionStat
	Preferences    *types.QuestPreferences
	RecentActivity []*types.ActivityLog
}

func (qc *QuestContext) skillIDSet() map[string]bool {
	set := make(map[string]bool, len(qc.Skills))
	for _, skill := range qc.Skills {
		set[skill.ID.String()] = true
	}
	return set
}

func (qc *QuestContext) factionIDSet() map[string]bool {
	set := make(map[string]bool, len(qc.FactionStats))
	for _, stat := range qc.FactionStats {
		set[stat.FactionID] = true
	}
	return set
}

// GeneratedQuest is the schema the model must produce per quest.
type GeneratedQuest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Difficulty       string   `json:"difficulty"`
	TargetSkillIDs   []string `json:"target_skill_ids"`
	TargetFactionIDs []string `json:"target_faction_ids"`
	XPReward         int      `json:"xp_reward"`
	RequiredActions  int      `json:"required_actions"`
}

type GenerationResult struct {
	Quests            []*types.Quest `json:"quests"`
	DroppedSkillIDs   []string       `json:"dropped_skill_ids"`
	DroppedFactionIDs []string       `json:"dropped_faction_ids"`
}

type QuestGenService interface {
	GetContext(ctx context.Context, userID uuid.UUID) (*QuestContext, error)
	Generate(ctx context.Context, userID uuid.UUID, questType string, count int) (*GenerationResult, error)
}

type questGenService struct {
	db           *gorm.DB
	log          *logger.Logger
	model        ModelClient
	skillRepo    repos.UserSkillRepo
	statRepo     repos.FactionStatRepo
	prefsRepo    repos.QuestPreferencesRepo
	activityRepo repos.ActivityLogRepo
	questRepo    repos.QuestRepo
	aiLogRepo    repos.AICallLogRepo
}

func NewQuestGenService(
	db *gorm.DB,
	log *logger.Logger,
	model ModelClient,
	skillRepo repos.UserSkillRepo,
	statRepo repos.FactionStatRepo,
	prefsRepo repos.QuestPreferencesRepo,
	activityRepo repos.ActivityLogRepo,
	questRepo repos.QuestRepo,
	aiLogRepo repos.AICallLogRepo,
) QuestGenService {
	return &questGenService{
		db:           db,
		log:          log.With("service", "QuestGenService"),
		model:        model,
		skillRepo:    skillRepo,
		statRepo:     statRepo,
		prefsRepo:    prefsRepo,
		activityRepo: activityRepo,
		questRepo:    questRepo,
		aiLogRepo:    aiLogRepo,
	}
}

// GetContext loads the four context slices in parallel; they are
// independent reads.
func (s *questGenService) GetContext(ctx context.Context, userID uuid.UUID) (*QuestContext, error) {
	qc := &QuestContext{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		skills, err := s.skillRepo.GetRecentlyUsed(gctx, nil, userID, questContextSkills)
		if err != nil {
			return fmt.Errorf("load skills: %w", err)
		}
		qc.Skills = skills
		return nil
	})
	g.Go(func() error {
		stats, err := s.statRepo.GetByUserID(gctx, nil, userID)
		if err != nil {
			return fmt.Errorf("load faction stats: %w", err)
		}
		qc.FactionStats = stats
		return nil
	})
	g.Go(func() error {
		prefs, err := s.prefsRepo.GetByUserID(gctx, nil, userID)
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}
		qc.Preferences = prefs
		return nil
	})
	g.Go(func() error {
		activity, err := s.activityRepo.GetRecent(gctx, nil, userID, questContextEvents)
		if err != nil {
			return fmt.Errorf("load activity: %w", err)
		}
		qc.RecentActivity = activity
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if qc.Preferences == nil {
		qc.Preferences = defaultQuestPreferences(userID)
	}
	return qc, nil
}

func defaultQuestPreferences(userID uuid.UUID) *types.QuestPreferences {
	return &types.QuestPreferences{
		UserID:              userID,
		PreferredDifficulty: types.QuestDifficultyMedium,
		DailyQuestCount:     3,
	}
}

func (s *questGenService) Generate(ctx context.Context, userID uuid.UUID, questType string, count int) (*GenerationResult, error) {
	if !types.IsValidQuestType(questType) {
		return nil, fmt.Errorf("invalid quest type %q", questType)
	}
	if s.model == nil {
		return nil, fmt.Errorf("quest generation requires a configured model")
	}

	qc, err := s.GetContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		count = qc.Preferences.DailyQuestCount
		if count <= 0 {
			count = 3
		}
	}

	prompt := buildContextPrompt(qc, questType, count)
	system := "Du bist der Questgeber eines gamifizierten Lebensmanagement-Systems. " +
		"Antworte ausschließlich mit JSON."

	raw, err := s.callModel(ctx, system, prompt)
	recordAICall(ctx, s.log, s.aiLogRepo, userID, "quest_generate", s.model.Model(), prompt, raw, err)
	if err != nil {
		return nil, err
	}

	generated, err := parseQuestResponse(raw)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			s.log.Error("Unparseable quest response", "raw_preview", pe.Preview)
		}
		return nil, err
	}

	result := s.materialize(userID, questType, qc, generated)

	if err := s.questRepo.CreateMany(ctx, nil, result.Quests); err != nil {
		return nil, fmt.Errorf("save quests: %w", err)
	}

	if err := s.activityRepo.Create(ctx, nil, &types.ActivityLog{
		ID:     uuid.New(),
		UserID: userID,
		Action: types.ActivityQuestsGenerated,
		Detail: fmt.Sprintf("%d %s quests", len(result.Quests), questType),
	}); err != nil {
		s.log.Warn("Failed to log quest generation", "user_id", userID, "error", err)
	}
	return result, nil
}

// callModel bounds the request at questGenTimeout and retries exactly once,
// and only when the failure is timeout-classified. Everything else
// propagates immediately.
func (s *questGenService) callModel(ctx context.Context, system, prompt string) (string, error) {
	attempt := func() (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, questGenTimeout)
		defer cancel()
		return s.model.Complete(callCtx, system, prompt, 4096)
	}

	raw, err := attempt()
	if err == nil {
		return raw, nil
	}
	if !httpx.IsTimeoutError(err) {
		return "", err
	}
	s.log.Warn("Model call timed out, retrying once", "error", err)
	return attempt()
}

// buildContextPrompt renders the snapshot deterministically. Entity UUIDs
// are embedded in bracket notation so the model can echo valid foreign keys
// back instead of inventing them.
func buildContextPrompt(qc *QuestContext, questType string, count int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Erzeuge %d %s-Quests für diesen Nutzer.\n\n", count, questType)

	sb.WriteString("Fraktionen (ID in Klammern):\n")
	for _, stat := range qc.FactionStats {
		fmt.Fprintf(&sb, "- [%s] Level %d, %d XP gesamt, Wichtigkeit %d\n",
			stat.FactionID, stat.Level, stat.TotalXP, stat.Importance)
	}

	if len(qc.Skills) > 0 {
		sb.WriteString("\nSkills (ID in Klammern):\n")
		for _, skill := range qc.Skills {
			fmt.Fprintf(&sb, "- [%s] %s (Level %d, Fraktion %s)\n",
				skill.ID, skill.Name, skill.Level, skill.FactionID)
		}
	}

	if len(qc.RecentActivity) > 0 {
		sb.WriteString("\nLetzte Aktivitäten:\n")
		for _, entry := range qc.RecentActivity {
			fmt.Fprintf(&sb, "- %s (%s, %d XP)\n", entry.Action, entry.FactionID, entry.XP)
		}
	}

	fmt.Fprintf(&sb, "\nBevorzugte Schwierigkeit: %s\n", qc.Preferences.PreferredDifficulty)

	fmt.Fprintf(&sb,
		"\nAntworte mit einem JSON-Objekt {\"quests\": [...]}. Jede Quest hat: "+
			"title, description, difficulty (easy|medium|hard|epic), "+
			"target_skill_ids (aus den Skill-IDs oben), target_faction_ids (aus den Fraktions-IDs oben), "+
			"xp_reward (optional) und required_actions.\n")
	return sb.String()
}

var questsObjectRe = regexp.MustCompile(`(?s)\{.*"quests".*\}`)

// parseQuestResponse tries four extraction strategies in order: a ```json
// fenced block, any fenced block, a regex match for an object containing
// "quests", and finally the raw text. The first strategy that decodes into
// a quest list wins; an empty list is a valid answer, not a parse failure.
func parseQuestResponse(raw string) ([]GeneratedQuest, error) {
	candidates := extractJSONCandidates(raw)
	if m := questsObjectRe.FindString(raw); m != "" {
		// Insert the regex match ahead of the raw-text fallback.
		candidates = append(candidates[:len(candidates)-1], m, strings.TrimSpace(raw))
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if quests, ok := decodeQuests(candidate); ok {
			return quests, nil
		}
	}
	return nil, &ParseError{Preview: truncate(raw, rawPreviewLimit)}
}

// decodeQuests accepts any candidate that carries a quests array, empty
// included. The pointer distinguishes "quests": [] from a missing key.
func decodeQuests(candidate string) ([]GeneratedQuest, bool) {
	var wrapper struct {
		Quests *[]GeneratedQuest `json:"quests"`
	}
	if err := json.Unmarshal([]byte(candidate), &wrapper); err == nil && wrapper.Quests != nil {
		return *wrapper.Quests, true
	}
	var bare []GeneratedQuest
	if err := json.Unmarshal([]byte(candidate), &bare); err == nil && bare != nil {
		return bare, true
	}
	return nil, false
}

// materialize turns decoded quests into rows: unknown IDs are dropped (the
// model hallucinates), XP and expiry are always computed locally when
// missing or implausible.
func (s *questGenService) materialize(userID uuid.UUID, questType string, qc *QuestContext, generated []GeneratedQuest) *GenerationResult {
	skillIDs := qc.skillIDSet()
	factionIDs := qc.factionIDSet()
	now := time.Now()

	result := &GenerationResult{
		Quests:            []*types.Quest{},
		DroppedSkillIDs:   []string{},
		DroppedFactionIDs: []string{},
	}

	for _, gq := range generated {
		difficulty := gq.Difficulty
		if !types.IsValidQuestDifficulty(difficulty) {
			difficulty = qc.Preferences.PreferredDifficulty
			if !types.IsValidQuestDifficulty(difficulty) {
				difficulty = types.QuestDifficultyMedium
			}
		}

		validSkills := make([]string, 0, len(gq.TargetSkillIDs))
		for _, id := range gq.TargetSkillIDs {
			if skillIDs[id] {
				validSkills = append(validSkills, id)
			} else {
				result.DroppedSkillIDs = append(result.DroppedSkillIDs, id)
			}
		}
		validFactions := make([]string, 0, len(gq.TargetFactionIDs))
		for _, id := range gq.TargetFactionIDs {
			if factionIDs[id] {
				validFactions = append(validFactions, id)
			} else {
				result.DroppedFactionIDs = append(result.DroppedFactionIDs, id)
			}
		}

		xp := gq.XPReward
		if xp <= 0 {
			xp = leveling.DefaultQuestXP(questType, difficulty)
		}
		requiredActions := gq.RequiredActions
		if requiredActions <= 0 {
			requiredActions = 1
		}

		skillsJSON, _ := json.Marshal(validSkills)
		factionsJSON, _ := json.Marshal(validFactions)

		result.Quests = append(result.Quests, &types.Quest{
			ID:               uuid.New(),
			UserID:           userID,
			QuestType:        questType,
			Difficulty:       difficulty,
			Status:           types.QuestStatusActive,
			Title:            gq.Title,
			Description:      gq.Description,
			TargetSkillIDs:   datatypes.JSON(skillsJSON),
			TargetFactionIDs: datatypes.JSON(factionsJSON),
			XPReward:         xp,
			RequiredActions:  requiredActions,
			ExpiresAt:        leveling.QuestExpiry(questType, now),
			AIModel:          s.model.Model(),
		})
	}
	return result
}

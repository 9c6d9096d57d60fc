package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/projektl/projekt-l-backend/internal/leveling"
	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/repos"
	"github.com/projektl/projekt-l-backend/internal/types"
)

var (
	ErrQuestNotFound      = fmt.Errorf("quest not found")
	ErrQuestNotOwned      = fmt.Errorf("quest does not belong to user")
	ErrQuestAlreadyClosed = fmt.Errorf("quest is no longer active")
)

type CreateQuestInput struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	QuestType        string   `json:"quest_type"`
	Difficulty       string   `json:"difficulty"`
	TargetFactionIDs []string `json:"target_faction_ids"`
	XPReward         int      `json:"xp_reward"`
	RequiredActions  int      `json:"required_actions"`
}

type QuestCompletionResult struct {
	Quest     *types.Quest `json:"quest"`
	Completed bool         `json:"completed"`
	XPGranted int          `json:"xp_granted"`
}

type QuestService interface {
	ListActive(ctx context.Context, userID uuid.UUID) ([]*types.Quest, error)
	Create(ctx context.Context, userID uuid.UUID, input CreateQuestInput) (*types.Quest, error)
	Complete(ctx context.Context, userID, questID uuid.UUID) (*QuestCompletionResult, error)
	Delete(ctx context.Context, userID, questID uuid.UUID) error
	GetPreferences(ctx context.Context, userID uuid.UUID) (*types.QuestPreferences, error)
	PutPreferences(ctx context.Context, userID uuid.UUID, prefs *types.QuestPreferences) error
}

type questService struct {
	db        *gorm.DB
	log       *logger.Logger
	questRepo repos.QuestRepo
	prefsRepo repos.QuestPreferencesRepo
	progress  ProgressService
}

func NewQuestService(
	db *gorm.DB,
	log *logger.Logger,
	questRepo repos.QuestRepo,
	prefsRepo repos.QuestPreferencesRepo,
	progress ProgressService,
) QuestService {
	return &questService{
		db:        db,
		log:       log.With("service", "QuestService"),
		questRepo: questRepo,
		prefsRepo: prefsRepo,
		progress:  progress,
	}
}

// ListActive expires overdue quests first so the caller never sees a quest
// whose deadline already passed.
func (s *questService) ListActive(ctx context.Context, userID uuid.UUID) ([]*types.Quest, error) {
	expired, err := s.questRepo.ExpireOverdue(ctx, nil, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("expire overdue quests: %w", err)
	}
	if expired > 0 {
		s.log.Info("Expired overdue quests", "user_id", userID, "count", expired)
	}
	return s.questRepo.GetActiveByUserID(ctx, nil, userID)
}

func (s *questService) Create(ctx context.Context, userID uuid.UUID, input CreateQuestInput) (*types.Quest, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("quest title is required")
	}
	if !types.IsValidQuestType(input.QuestType) {
		return nil, fmt.Errorf("invalid quest type %q", input.QuestType)
	}
	difficulty := input.Difficulty
	if !types.IsValidQuestDifficulty(difficulty) {
		difficulty = types.QuestDifficultyMedium
	}
	for _, id := range input.TargetFactionIDs {
		if !types.IsKnownFaction(id) {
			return nil, fmt.Errorf("unknown faction %q", id)
		}
	}

	xp := input.XPReward
	if xp <= 0 {
		xp = leveling.DefaultQuestXP(input.QuestType, difficulty)
	}
	requiredActions := input.RequiredActions
	if requiredActions <= 0 {
		requiredActions = 1
	}
	factionsJSON, _ := json.Marshal(input.TargetFactionIDs)

	quest := &types.Quest{
		ID:               uuid.New(),
		UserID:           userID,
		QuestType:        input.QuestType,
		Difficulty:       difficulty,
		Status:           types.QuestStatusActive,
		Title:            input.Title,
		Description:      input.Description,
		TargetFactionIDs: datatypes.JSON(factionsJSON),
		XPReward:         xp,
		RequiredActions:  requiredActions,
		ExpiresAt:        leveling.QuestExpiry(input.QuestType, time.Now()),
	}
	if err := s.questRepo.Create(ctx, nil, quest); err != nil {
		return nil, fmt.Errorf("create quest: %w", err)
	}
	return quest, nil
}

// Complete advances the quest by one action. When the last action lands the
// quest closes and its XP reward is split evenly across the target factions;
// a quest without targets still grants XP, it just touches no faction stat.
func (s *questService) Complete(ctx context.Context, userID, questID uuid.UUID) (*QuestCompletionResult, error) {
	quest, err := s.loadOwned(ctx, userID, questID)
	if err != nil {
		return nil, err
	}
	if quest.Status != types.QuestStatusActive {
		return nil, ErrQuestAlreadyClosed
	}

	quest.CompletedActions++
	result := &QuestCompletionResult{Quest: quest}

	if quest.CompletedActions >= quest.RequiredActions {
		now := time.Now()
		quest.Status = types.QuestStatusCompleted
		quest.CompletedAt = &now
		result.Completed = true
	}
	if err := s.questRepo.Save(ctx, nil, quest); err != nil {
		return nil, fmt.Errorf("save quest: %w", err)
	}
	if !result.Completed {
		return result, nil
	}

	var factions []string
	if len(quest.TargetFactionIDs) > 0 {
		if err := json.Unmarshal(quest.TargetFactionIDs, &factions); err != nil {
			s.log.Warn("Quest has malformed target factions", "quest_id", quest.ID, "error", err)
		}
	}
	if len(factions) == 0 {
		return result, nil
	}

	share := quest.XPReward / len(factions)
	for _, factionID := range factions {
		granted, err := s.progress.AwardXP(ctx, userID, factionID, share, types.ActivityQuestCompleted, quest.Title)
		if err != nil {
			s.log.Error("Failed to award quest XP", "quest_id", quest.ID, "faction_id", factionID, "error", err)
			continue
		}
		result.XPGranted += granted
	}
	return result, nil
}

func (s *questService) Delete(ctx context.Context, userID, questID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, userID, questID); err != nil {
		return err
	}
	return s.questRepo.Delete(ctx, nil, questID)
}

func (s *questService) GetPreferences(ctx context.Context, userID uuid.UUID) (*types.QuestPreferences, error) {
	prefs, err := s.prefsRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = defaultQuestPreferences(userID)
	}
	return prefs, nil
}

func (s *questService) PutPreferences(ctx context.Context, userID uuid.UUID, prefs *types.QuestPreferences) error {
	if !types.IsValidQuestDifficulty(prefs.PreferredDifficulty) {
		return fmt.Errorf("invalid difficulty %q", prefs.PreferredDifficulty)
	}
	if prefs.DailyQuestCount <= 0 {
		prefs.DailyQuestCount = 3
	}
	prefs.UserID = userID
	return s.prefsRepo.Upsert(ctx, nil, prefs)
}

func (s *questService) loadOwned(ctx context.Context, userID, questID uuid.UUID) (*types.Quest, error) {
	quest, err := s.questRepo.GetByID(ctx, nil, questID)
	if err != nil {
		return nil, err
	}
	if quest == nil {
		return nil, ErrQuestNotFound
	}
	if quest.UserID != userID {
		return nil, ErrQuestNotOwned
	}
	return quest, nil
}

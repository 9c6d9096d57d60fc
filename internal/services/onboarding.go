package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/projektl/projekt-l-backend/internal/leveling"
	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/repos"
	"github.com/projektl/projekt-l-backend/internal/types"
)

type DeepDiveAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type OnboardingSkill struct {
	Name       string `json:"name"`
	FactionID  string `json:"faction_id"`
	Experience string `json:"experience"`
}

type OnboardingHabit struct {
	Name            string `json:"name"`
	FactionID       string `json:"faction_id"`
	XPPerCompletion int    `json:"xp_per_completion"`
	Frequency       string `json:"frequency"`
}

type OnboardingNegativeHabit struct {
	Name       string   `json:"name"`
	FactionIDs []string `json:"faction_ids"`
}

type OnboardingData struct {
	FactionRatings []FactionRating           `json:"factionRatings"`
	DeepDive       []DeepDiveAnswer          `json:"deepDive"`
	AIAnalysis     *AIAnalysisResult         `json:"aiAnalysis,omitempty"`
	Skills         []OnboardingSkill         `json:"skills"`
	Habits         []OnboardingHabit         `json:"habits"`
	NegativeHabits []OnboardingNegativeHabit `json:"negativeHabits"`
	Profile        json.RawMessage           `json:"profile,omitempty"`
	Notifications  json.RawMessage           `json:"notifications,omitempty"`
}

type OnboardingResult struct {
	CharacterClass string   `json:"character_class"`
	TotalLevel     int      `json:"total_level"`
	TotalXP        int      `json:"total_xp"`
	SkippedSkills  []string `json:"skipped_skills"`
}

type OnboardingService interface {
	Complete(ctx context.Context, userID uuid.UUID, data OnboardingData) (*OnboardingResult, error)
}

type onboardingService struct {
	db               *gorm.DB
	log              *logger.Logger
	factionStatRepo  repos.FactionStatRepo
	skillDomainRepo  repos.SkillDomainRepo
	userSkillRepo    repos.UserSkillRepo
	habitRepo        repos.HabitRepo
	habitFactionRepo repos.HabitFactionRepo
	profileRepo      repos.UserProfileRepo
	userRepo         repos.UserRepo
	responseRepo     repos.OnboardingResponseRepo
	notifRepo        repos.NotificationSettingsRepo
	activityRepo     repos.ActivityLogRepo
	rng              *rand.Rand
}

func NewOnboardingService(
	db *gorm.DB,
	log *logger.Logger,
	factionStatRepo repos.FactionStatRepo,
	skillDomainRepo repos.SkillDomainRepo,
	userSkillRepo repos.UserSkillRepo,
	habitRepo repos.HabitRepo,
	habitFactionRepo repos.HabitFactionRepo,
	profileRepo repos.UserProfileRepo,
	userRepo repos.UserRepo,
	responseRepo repos.OnboardingResponseRepo,
	notifRepo repos.NotificationSettingsRepo,
	activityRepo repos.ActivityLogRepo,
	rng *rand.Rand,
) OnboardingService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &onboardingService{
		db:               db,
		log:              log.With("service", "OnboardingService"),
		factionStatRepo:  factionStatRepo,
		skillDomainRepo:  skillDomainRepo,
		userSkillRepo:    userSkillRepo,
		habitRepo:        habitRepo,
		habitFactionRepo: habitFactionRepo,
		profileRepo:      profileRepo,
		userRepo:         userRepo,
		responseRepo:     responseRepo,
		notifRepo:        notifRepo,
		activityRepo:     activityRepo,
		rng:              rng,
	}
}

// defaultTargetDays covers the work week; users adjust per habit later.
var defaultTargetDays = []int{1, 2, 3, 4, 5}

// Complete materializes the user's starting game state. The core writes run
// in one transaction; audit and notification writes afterwards are
// best-effort and never fail the operation.
func (s *onboardingService) Complete(ctx context.Context, userID uuid.UUID, data OnboardingData) (*OnboardingResult, error) {
	if len(data.FactionRatings) == 0 {
		return nil, fmt.Errorf("factionRatings are required")
	}

	result := &OnboardingResult{SkippedSkills: []string{}}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		levelSum, xpSum, ratingCount, err := s.writeFactionStats(ctx, tx, userID, data)
		if err != nil {
			return fmt.Errorf("write faction stats: %w", err)
		}

		skipped, err := s.writeSkills(ctx, tx, userID, data.Skills)
		if err != nil {
			return fmt.Errorf("write skills: %w", err)
		}
		result.SkippedSkills = skipped

		if err := s.writeHabits(ctx, tx, userID, data.Habits); err != nil {
			return fmt.Errorf("write habits: %w", err)
		}
		if err := s.writeNegativeHabits(ctx, tx, userID, data.NegativeHabits); err != nil {
			return fmt.Errorf("write negative habits: %w", err)
		}

		result.CharacterClass = s.resolveCharacterClass(data)
		result.TotalLevel = levelSum / ratingCount
		result.TotalXP = xpSum

		if err := s.profileRepo.Upsert(ctx, tx, &types.UserProfile{
			ID:                  uuid.New(),
			UserID:              userID,
			TotalLevel:          result.TotalLevel,
			TotalXP:             result.TotalXP,
			CharacterClass:      result.CharacterClass,
			OnboardingCompleted: true,
		}); err != nil {
			return fmt.Errorf("write profile: %w", err)
		}

		// Fast-path flag checked by the auth layer without loading the
		// profile row.
		return s.userRepo.SetOnboardingCompleted(ctx, tx, userID)
	})
	if err != nil {
		return nil, err
	}

	s.writeAuditRows(ctx, userID, data)
	return result, nil
}

func (s *onboardingService) writeFactionStats(ctx context.Context, tx *gorm.DB, userID uuid.UUID, data OnboardingData) (levelSum, xpSum, count int, err error) {
	now := time.Now()
	for _, rating := range data.FactionRatings {
		level := 0
		if data.AIAnalysis != nil {
			level = data.AIAnalysis.FactionLevels[rating.FactionID]
		}
		if level <= 0 {
			level = leveling.FactionLevel(rating.CurrentStatus, rating.YearsExperience)
		}
		totalXP := leveling.XPForLevel(level)

		stat := &types.FactionStat{
			ID:           uuid.New(),
			UserID:       userID,
			FactionID:    rating.FactionID,
			Level:        level,
			TotalXP:      totalXP,
			Importance:   rating.Importance,
			XPMultiplier: leveling.XPMultiplier(rating.Importance),
			LastActivity: &now,
		}
		if err := s.factionStatRepo.Upsert(ctx, tx, stat); err != nil {
			return 0, 0, 0, err
		}
		levelSum += level
		xpSum += totalXP
		count++
	}
	return levelSum, xpSum, count, nil
}

// writeSkills resolves each requested skill to the domain of its faction.
// Skills without a matching domain are skipped and reported, not failed.
func (s *onboardingService) writeSkills(ctx context.Context, tx *gorm.DB, userID uuid.UUID, skills []OnboardingSkill) ([]string, error) {
	skipped := []string{}
	if len(skills) == 0 {
		return skipped, nil
	}

	domains, err := s.skillDomainRepo.GetAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	domainByFaction := make(map[string]*types.SkillDomain, len(domains))
	for _, d := range domains {
		domainByFaction[d.FactionID] = d
	}

	rows := make([]*types.UserSkill, 0, len(skills))
	for _, skill := range skills {
		domain, ok := domainByFaction[skill.FactionID]
		if !ok {
			s.log.Warn("No skill domain for faction, skipping skill", "faction_id", skill.FactionID, "skill", skill.Name)
			skipped = append(skipped, skill.Name)
			continue
		}
		level := leveling.SkillLevel(leveling.ExperienceTier(skill.Experience), s.rng)
		rows = append(rows, &types.UserSkill{
			ID:        uuid.New(),
			UserID:    userID,
			DomainID:  domain.ID,
			FactionID: skill.FactionID,
			Name:      skill.Name,
			Level:     level,
			CurrentXP: leveling.XPForLevel(level),
		})
	}
	if err := s.userSkillRepo.CreateMany(ctx, tx, rows); err != nil {
		return nil, err
	}
	return skipped, nil
}

func (s *onboardingService) writeHabits(ctx context.Context, tx *gorm.DB, userID uuid.UUID, habits []OnboardingHabit) error {
	if len(habits) == 0 {
		return nil
	}
	targetDays, _ := json.Marshal(defaultTargetDays)
	rows := make([]*types.Habit, 0, len(habits))
	for _, habit := range habits {
		frequency := habit.Frequency
		if frequency == "" {
			frequency = "daily"
		}
		xp := habit.XPPerCompletion
		if xp <= 0 {
			xp = 25
		}
		rows = append(rows, &types.Habit{
			ID:              uuid.New(),
			UserID:          userID,
			Name:            habit.Name,
			HabitType:       types.HabitTypePositive,
			Frequency:       frequency,
			TargetDays:      datatypes.JSON(targetDays),
			CurrentStreak:   1, // small head start for finishing onboarding
			LongestStreak:   1,
			XPPerCompletion: xp,
			FactionID:       habit.FactionID,
		})
	}
	return s.habitRepo.CreateMany(ctx, tx, rows)
}

func (s *onboardingService) writeNegativeHabits(ctx context.Context, tx *gorm.DB, userID uuid.UUID, habits []OnboardingNegativeHabit) error {
	targetDays, _ := json.Marshal(defaultTargetDays)
	for _, habit := range habits {
		if len(habit.FactionIDs) == 0 {
			continue
		}
		row := &types.Habit{
			ID:              uuid.New(),
			UserID:          userID,
			Name:            habit.Name,
			HabitType:       types.HabitTypeNegative,
			Frequency:       "daily",
			TargetDays:      datatypes.JSON(targetDays),
			XPPerCompletion: 0,
			FactionID:       habit.FactionIDs[0],
		}
		if err := s.habitRepo.Create(ctx, tx, row); err != nil {
			return err
		}

		weights := NegativeHabitWeights(len(habit.FactionIDs))
		junctions := make([]*types.HabitFaction, 0, len(habit.FactionIDs))
		for i, factionID := range habit.FactionIDs {
			junctions = append(junctions, &types.HabitFaction{
				ID:        uuid.New(),
				HabitID:   row.ID,
				FactionID: factionID,
				Weight:    weights[i],
			})
		}
		if err := s.habitFactionRepo.CreateMany(ctx, tx, junctions); err != nil {
			return err
		}
	}
	return nil
}

// NegativeHabitWeights returns per-faction weights, primary first. A sole
// faction carries the full 100; otherwise the primary gets 60 and the
// remaining 40 is split evenly among the secondaries.
func NegativeHabitWeights(factionCount int) []int {
	if factionCount <= 0 {
		return nil
	}
	if factionCount == 1 {
		return []int{100}
	}
	weights := make([]int, factionCount)
	weights[0] = 60
	secondary := 40 / (factionCount - 1)
	for i := 1; i < factionCount; i++ {
		weights[i] = secondary
	}
	return weights
}

func (s *onboardingService) resolveCharacterClass(data OnboardingData) string {
	if data.AIAnalysis != nil && data.AIAnalysis.CharacterClass != "" {
		return data.AIAnalysis.CharacterClass
	}
	importance := make(map[string]int, len(data.FactionRatings))
	for _, rating := range data.FactionRatings {
		importance[rating.FactionID] = rating.Importance
	}
	return leveling.CharacterClassFromImportance(importance)
}

func (s *onboardingService) writeAuditRows(ctx context.Context, userID uuid.UUID, data OnboardingData) {
	payload, err := json.Marshal(data)
	if err == nil {
		if err := s.responseRepo.Create(ctx, nil, &types.OnboardingResponse{
			ID:      uuid.New(),
			UserID:  userID,
			Payload: datatypes.JSON(payload),
		}); err != nil {
			s.log.Warn("Failed to store onboarding response", "user_id", userID, "error", err)
		}
	}

	if len(data.Notifications) > 0 {
		if err := s.notifRepo.Upsert(ctx, nil, &types.NotificationSettings{
			ID:       uuid.New(),
			UserID:   userID,
			Settings: datatypes.JSON(data.Notifications),
		}); err != nil {
			s.log.Warn("Failed to store notification settings", "user_id", userID, "error", err)
		}
	}

	if err := s.activityRepo.Create(ctx, nil, &types.ActivityLog{
		ID:     uuid.New(),
		UserID: userID,
		Action: types.ActivityOnboardingDone,
	}); err != nil {
		s.log.Warn("Failed to log onboarding activity", "user_id", userID, "error", err)
	}
}

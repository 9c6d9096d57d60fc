package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/repos"
	"github.com/projektl/projekt-l-backend/internal/types"
)

var (
	ErrHabitNotFound = fmt.Errorf("habit not found")
	ErrHabitNotOwned = fmt.Errorf("habit does not belong to user")
)

const defaultHabitXP = 25

type CreateHabitInput struct {
	Name             string   `json:"name"`
	HabitType        string   `json:"habit_type"`
	Frequency        string   `json:"frequency"`
	TargetDays       []int    `json:"target_days"`
	XPPerCompletion  int      `json:"xp_per_completion"`
	FactionID        string   `json:"faction_id"`
	AffectedFactions []string `json:"affected_factions"`
}

type HabitCompletionResult struct {
	Habit     *types.Habit `json:"habit"`
	XPGranted int          `json:"xp_granted"`
}

type HabitService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*types.Habit, error)
	Create(ctx context.Context, userID uuid.UUID, input CreateHabitInput) (*types.Habit, error)
	Complete(ctx context.Context, userID, habitID uuid.UUID) (*HabitCompletionResult, error)
	Delete(ctx context.Context, userID, habitID uuid.UUID) error
}

type habitService struct {
	db           *gorm.DB
	log          *logger.Logger
	habitRepo    repos.HabitRepo
	junctionRepo repos.HabitFactionRepo
	activityRepo repos.ActivityLogRepo
	progress     ProgressService
}

func NewHabitService(
	db *gorm.DB,
	log *logger.Logger,
	habitRepo repos.HabitRepo,
	junctionRepo repos.HabitFactionRepo,
	activityRepo repos.ActivityLogRepo,
	progress ProgressService,
) HabitService {
	return &habitService{
		db:           db,
		log:          log.With("service", "HabitService"),
		habitRepo:    habitRepo,
		junctionRepo: junctionRepo,
		activityRepo: activityRepo,
		progress:     progress,
	}
}

func (s *habitService) List(ctx context.Context, userID uuid.UUID) ([]*types.Habit, error) {
	return s.habitRepo.GetByUserID(ctx, nil, userID)
}

func (s *habitService) Create(ctx context.Context, userID uuid.UUID, input CreateHabitInput) (*types.Habit, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("habit name is required")
	}
	if input.HabitType != types.HabitTypePositive && input.HabitType != types.HabitTypeNegative {
		return nil, fmt.Errorf("invalid habit type %q", input.HabitType)
	}
	if !types.IsKnownFaction(input.FactionID) {
		return nil, fmt.Errorf("unknown faction %q", input.FactionID)
	}
	for _, id := range input.AffectedFactions {
		if !types.IsKnownFaction(id) {
			return nil, fmt.Errorf("unknown faction %q", id)
		}
	}

	frequency := input.Frequency
	if frequency == "" {
		frequency = "daily"
	}
	targetDays := input.TargetDays
	if len(targetDays) == 0 {
		targetDays = []int{1, 2, 3, 4, 5}
	}
	daysJSON, _ := json.Marshal(targetDays)

	xp := input.XPPerCompletion
	if input.HabitType == types.HabitTypeNegative {
		// Resisting a negative habit grants no XP; the reward is the
		// streak itself.
		xp = 0
	} else if xp <= 0 {
		xp = defaultHabitXP
	}

	habit := &types.Habit{
		ID:              uuid.New(),
		UserID:          userID,
		Name:            input.Name,
		HabitType:       input.HabitType,
		Frequency:       frequency,
		TargetDays:      datatypes.JSON(daysJSON),
		XPPerCompletion: xp,
		FactionID:       input.FactionID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.habitRepo.Create(ctx, tx, habit); err != nil {
			return err
		}
		if habit.HabitType != types.HabitTypeNegative {
			return nil
		}
		factions := input.AffectedFactions
		if len(factions) == 0 {
			factions = []string{habit.FactionID}
		}
		weights := NegativeHabitWeights(len(factions))
		rows := make([]*types.HabitFaction, 0, len(factions))
		for i, factionID := range factions {
			rows = append(rows, &types.HabitFaction{
				ID:        uuid.New(),
				HabitID:   habit.ID,
				FactionID: factionID,
				Weight:    weights[i],
			})
		}
		return s.junctionRepo.CreateMany(ctx, tx, rows)
	})
	if err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return habit, nil
}

// Complete registers one completion (or one resisted temptation for a
// negative habit). Streaks count consecutive days; a gap of more than one
// day resets the streak to 1.
func (s *habitService) Complete(ctx context.Context, userID, habitID uuid.UUID) (*HabitCompletionResult, error) {
	habit, err := s.loadOwned(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	habit.CurrentStreak = nextStreak(habit.CurrentStreak, habit.LastCompletedAt, now)
	if habit.CurrentStreak > habit.LongestStreak {
		habit.LongestStreak = habit.CurrentStreak
	}
	habit.TotalCompletions++
	habit.LastCompletedAt = &now

	if err := s.habitRepo.Save(ctx, nil, habit); err != nil {
		return nil, fmt.Errorf("save habit: %w", err)
	}

	result := &HabitCompletionResult{Habit: habit}
	if habit.HabitType == types.HabitTypePositive {
		granted, err := s.progress.AwardXP(ctx, userID, habit.FactionID, habit.XPPerCompletion, types.ActivityHabitCompleted, habit.Name)
		if err != nil {
			s.log.Error("Failed to award habit XP", "habit_id", habit.ID, "error", err)
		} else {
			result.XPGranted = granted
		}
		return result, nil
	}

	if err := s.activityRepo.Create(ctx, nil, &types.ActivityLog{
		ID:        uuid.New(),
		UserID:    userID,
		Action:    types.ActivityHabitResisted,
		FactionID: habit.FactionID,
		Detail:    habit.Name,
	}); err != nil {
		s.log.Warn("Failed to log resisted habit", "habit_id", habit.ID, "error", err)
	}
	return result, nil
}

func (s *habitService) Delete(ctx context.Context, userID, habitID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, userID, habitID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.junctionRepo.DeleteByHabitID(ctx, tx, habitID); err != nil {
			return err
		}
		return s.habitRepo.Delete(ctx, tx, habitID)
	})
}

func (s *habitService) loadOwned(ctx context.Context, userID, habitID uuid.UUID) (*types.Habit, error) {
	habit, err := s.habitRepo.GetByID(ctx, nil, habitID)
	if err != nil {
		return nil, err
	}
	if habit == nil {
		return nil, ErrHabitNotFound
	}
	if habit.UserID != userID {
		return nil, ErrHabitNotOwned
	}
	return habit, nil
}

func nextStreak(current int, lastCompleted *time.Time, now time.Time) int {
	if lastCompleted == nil {
		return 1
	}
	last := lastCompleted.Truncate(24 * time.Hour)
	today := now.Truncate(24 * time.Hour)
	switch today.Sub(last) {
	case 0:
		// Already completed today; streak stays put.
		if current < 1 {
			return 1
		}
		return current
	case 24 * time.Hour:
		return current + 1
	default:
		return 1
	}
}

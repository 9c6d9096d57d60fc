package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/projektl/projekt-l-backend/internal/leveling"
	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/repos"
	"github.com/projektl/projekt-l-backend/internal/types"
)

// ProgressService re-aggregates XP after onboarding: every award flows into
// the faction stat, recomputes its level from the cumulative thresholds and
// refreshes the denormalized profile totals.
type ProgressService interface {
	AwardXP(ctx context.Context, userID uuid.UUID, factionID string, baseXP int, action, detail string) (int, error)
}

type progressService struct {
	db              *gorm.DB
	log             *logger.Logger
	factionStatRepo repos.FactionStatRepo
	profileRepo     repos.UserProfileRepo
	activityRepo    repos.ActivityLogRepo
}

func NewProgressService(
	db *gorm.DB,
	log *logger.Logger,
	factionStatRepo repos.FactionStatRepo,
	profileRepo repos.UserProfileRepo,
	activityRepo repos.ActivityLogRepo,
) ProgressService {
	return &progressService{
		db:              db,
		log:             log.With("service", "ProgressService"),
		factionStatRepo: factionStatRepo,
		profileRepo:     profileRepo,
		activityRepo:    activityRepo,
	}
}

// AwardXP applies the faction multiplier to baseXP and returns the XP
// actually granted. Levels only ever go up here; a stat whose stored level
// exceeds the threshold-derived one keeps it.
func (ps *progressService) AwardXP(ctx context.Context, userID uuid.UUID, factionID string, baseXP int, action, detail string) (int, error) {
	if baseXP < 0 {
		baseXP = 0
	}

	granted := 0
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stat, err := ps.factionStatRepo.GetByUserAndFaction(ctx, tx, userID, factionID)
		if err != nil {
			return fmt.Errorf("load faction stat: %w", err)
		}
		if stat == nil {
			stat = &types.FactionStat{
				ID:           uuid.New(),
				UserID:       userID,
				FactionID:    factionID,
				Level:        1,
				Importance:   3,
				XPMultiplier: 1,
			}
		}

		multiplier := stat.XPMultiplier
		if multiplier <= 0 {
			multiplier = 1
		}
		granted = int(math.Round(float64(baseXP) * multiplier))

		now := time.Now()
		stat.TotalXP += granted
		stat.WeeklyXP += granted
		stat.MonthlyXP += granted
		if derived := leveling.LevelForXP(stat.TotalXP); derived > stat.Level {
			stat.Level = derived
		}
		stat.LastActivity = &now

		if err := ps.factionStatRepo.Save(ctx, tx, stat); err != nil {
			return fmt.Errorf("save faction stat: %w", err)
		}
		if err := ps.refreshProfile(ctx, tx, userID); err != nil {
			return fmt.Errorf("refresh profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := ps.activityRepo.Create(ctx, nil, &types.ActivityLog{
		ID:        uuid.New(),
		UserID:    userID,
		Action:    action,
		FactionID: factionID,
		Detail:    detail,
		XP:        granted,
	}); err != nil {
		ps.log.Warn("Failed to log activity", "user_id", userID, "action", action, "error", err)
	}
	return granted, nil
}

func (ps *progressService) refreshProfile(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	stats, err := ps.factionStatRepo.GetByUserID(ctx, tx, userID)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		return nil
	}

	levelSum, xpSum := 0, 0
	for _, stat := range stats {
		levelSum += stat.Level
		xpSum += stat.TotalXP
	}

	profile, err := ps.profileRepo.GetByUserID(ctx, tx, userID)
	if err != nil {
		return err
	}
	if profile == nil {
		profile = &types.UserProfile{
			ID:             uuid.New(),
			UserID:         userID,
			CharacterClass: leveling.DefaultCharacterClass,
		}
	}
	profile.TotalLevel = levelSum / len(stats)
	profile.TotalXP = xpSum
	return ps.profileRepo.Upsert(ctx, tx, profile)
}

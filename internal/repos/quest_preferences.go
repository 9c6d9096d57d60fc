package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/types"
)

type QuestPreferencesRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.QuestPreferences, error)
	Upsert(ctx context.Context, tx *gorm.DB, prefs *types.QuestPreferences) error
}

type questPreferencesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestPreferencesRepo(db *gorm.DB, baseLog *logger.Logger) QuestPreferencesRepo {
	return &questPreferencesRepo{db: db, log: baseLog.With("repo", "QuestPreferencesRepo")}
}

func (r *questPreferencesRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *questPreferencesRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.QuestPreferences, error) {
	var row types.QuestPreferences
	err := r.conn(tx).WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *questPreferencesRepo) Upsert(ctx context.Context, tx *gorm.DB, prefs *types.QuestPreferences) error {
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"preferred_difficulty", "focus_faction_ids", "daily_quest_count", "theme_hints", "updated_at"}),
		}).
		Create(prefs).Error
}

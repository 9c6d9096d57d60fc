package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/types"
)

type FactionStatRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, stat *types.FactionStat) error
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.FactionStat, error)
	GetByUserAndFaction(ctx context.Context, tx *gorm.DB, userID uuid.UUID, factionID string) (*types.FactionStat, error)
	Save(ctx context.Context, tx *gorm.DB, stat *types.FactionStat) error
}

type factionStatRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFactionStatRepo(db *gorm.DB, baseLog *logger.Logger) FactionStatRepo {
	return &factionStatRepo{db: db, log: baseLog.With("repo", "FactionStatRepo")}
}

func (r *factionStatRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Upsert is keyed on (user_id, faction_id) so onboarding can be re-run
// without duplicating stats.
func (r *factionStatRepo) Upsert(ctx context.Context, tx *gorm.DB, stat *types.FactionStat) error {
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "faction_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"level", "total_xp", "importance", "xp_multiplier", "last_activity", "updated_at"}),
		}).
		Create(stat).Error
}

func (r *factionStatRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.FactionStat, error) {
	var rows []*types.FactionStat
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("faction_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *factionStatRepo) GetByUserAndFaction(ctx context.Context, tx *gorm.DB, userID uuid.UUID, factionID string) (*types.FactionStat, error) {
	var row types.FactionStat
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND faction_id = ?", userID, factionID).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *factionStatRepo) Save(ctx context.Context, tx *gorm.DB, stat *types.FactionStat) error {
	return r.conn(tx).WithContext(ctx).Save(stat).Error
}

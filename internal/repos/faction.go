package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/types"
)

type FactionRepo interface {
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Faction, error)
}

type factionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFactionRepo(db *gorm.DB, baseLog *logger.Logger) FactionRepo {
	return &factionRepo{db: db, log: baseLog.With("repo", "FactionRepo")}
}

func (r *factionRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Faction, error) {
	conn := tx
	if conn == nil {
		conn = r.db
	}
	var rows []*types.Faction
	if err := conn.WithContext(ctx).Order("sort_order ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

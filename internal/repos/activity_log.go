package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/types"
)

type ActivityLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.ActivityLog) error
	GetRecent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ActivityLog, error)
}

type activityLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityLogRepo(db *gorm.DB, baseLog *logger.Logger) ActivityLogRepo {
	return &activityLogRepo{db: db, log: baseLog.With("repo", "ActivityLogRepo")}
}

func (r *activityLogRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *activityLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.ActivityLog) error {
	return r.conn(tx).WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepo) GetRecent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ActivityLog, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []*types.ActivityLog
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

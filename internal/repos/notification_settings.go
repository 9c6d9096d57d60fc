package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/types"
)

type NotificationSettingsRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *types.NotificationSettings) error
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.NotificationSettings, error)
}

type notificationSettingsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationSettingsRepo(db *gorm.DB, baseLog *logger.Logger) NotificationSettingsRepo {
	return &notificationSettingsRepo{db: db, log: baseLog.With("repo", "NotificationSettingsRepo")}
}

func (r *notificationSettingsRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *notificationSettingsRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.NotificationSettings) error {
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"settings", "updated_at"}),
		}).
		Create(row).Error
}

func (r *notificationSettingsRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.NotificationSettings, error) {
	var row types.NotificationSettings
	err := r.conn(tx).WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

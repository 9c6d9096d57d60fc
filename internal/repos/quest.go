package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/types"
)

type QuestRepo interface {
	Create(ctx context.Context, tx *gorm.DB, quest *types.Quest) error
	CreateMany(ctx context.Context, tx *gorm.DB, quests []*types.Quest) error
	GetByID(ctx context.Context, tx *gorm.DB, questID uuid.UUID) (*types.Quest, error)
	GetActiveByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Quest, error)
	Save(ctx context.Context, tx *gorm.DB, quest *types.Quest) error
	Delete(ctx context.Context, tx *gorm.DB, questID uuid.UUID) error
	ExpireOverdue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time) (int64, error)
}

type questRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestRepo(db *gorm.DB, baseLog *logger.Logger) QuestRepo {
	return &questRepo{db: db, log: baseLog.With("repo", "QuestRepo")}
}

func (r *questRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *questRepo) Create(ctx context.Context, tx *gorm.DB, quest *types.Quest) error {
	return r.conn(tx).WithContext(ctx).Create(quest).Error
}

// CreateMany inserts generated quests as one batch. Any error aborts the
// whole batch.
func (r *questRepo) CreateMany(ctx context.Context, tx *gorm.DB, quests []*types.Quest) error {
	if len(quests) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(quests).Error
}

func (r *questRepo) GetByID(ctx context.Context, tx *gorm.DB, questID uuid.UUID) (*types.Quest, error) {
	var row types.Quest
	err := r.conn(tx).WithContext(ctx).Where("id = ?", questID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *questRepo) GetActiveByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Quest, error) {
	var rows []*types.Quest
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, types.QuestStatusActive).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *questRepo) Save(ctx context.Context, tx *gorm.DB, quest *types.Quest) error {
	return r.conn(tx).WithContext(ctx).Save(quest).Error
}

func (r *questRepo) Delete(ctx context.Context, tx *gorm.DB, questID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).Where("id = ?", questID).Delete(&types.Quest{}).Error
}

// ExpireOverdue flips overdue active quests to expired and returns how many
// rows changed.
func (r *questRepo) ExpireOverdue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&types.Quest{}).
		Where("user_id = ? AND status = ? AND expires_at IS NOT NULL AND expires_at < ?", userID, types.QuestStatusActive, now).
		Update("status", types.QuestStatusExpired)
	return res.RowsAffected, res.Error
}

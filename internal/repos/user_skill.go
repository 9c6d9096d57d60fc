package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/types"
)

type UserSkillRepo interface {
	CreateMany(ctx context.Context, tx *gorm.DB, skills []*types.UserSkill) error
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserSkill, error)
	GetRecentlyUsed(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.UserSkill, error)
	Save(ctx context.Context, tx *gorm.DB, skill *types.UserSkill) error
}

type userSkillRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserSkillRepo(db *gorm.DB, baseLog *logger.Logger) UserSkillRepo {
	return &userSkillRepo{db: db, log: baseLog.With("repo", "UserSkillRepo")}
}

func (r *userSkillRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *userSkillRepo) CreateMany(ctx context.Context, tx *gorm.DB, skills []*types.UserSkill) error {
	if len(skills) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(skills).Error
}

func (r *userSkillRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserSkill, error) {
	var rows []*types.UserSkill
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetRecentlyUsed orders by last_used_at (nulls last) so the quest context
// sees the skills the user actually touches.
func (r *userSkillRepo) GetRecentlyUsed(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.UserSkill, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []*types.UserSkill
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_used_at DESC NULLS LAST, updated_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *userSkillRepo) Save(ctx context.Context, tx *gorm.DB, skill *types.UserSkill) error {
	return r.conn(tx).WithContext(ctx).Save(skill).Error
}

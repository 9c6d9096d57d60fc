package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/types"
)

type SkillDomainRepo interface {
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.SkillDomain, error)
	GetByFactionID(ctx context.Context, tx *gorm.DB, factionID string) (*types.SkillDomain, error)
}

type skillDomainRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillDomainRepo(db *gorm.DB, baseLog *logger.Logger) SkillDomainRepo {
	return &skillDomainRepo{db: db, log: baseLog.With("repo", "SkillDomainRepo")}
}

func (r *skillDomainRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *skillDomainRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.SkillDomain, error) {
	var rows []*types.SkillDomain
	if err := r.conn(tx).WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *skillDomainRepo) GetByFactionID(ctx context.Context, tx *gorm.DB, factionID string) (*types.SkillDomain, error) {
	var row types.SkillDomain
	err := r.conn(tx).WithContext(ctx).Where("faction_id = ?", factionID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

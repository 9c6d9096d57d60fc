package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/types"
)

type OnboardingResponseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.OnboardingResponse) error
}

type onboardingResponseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOnboardingResponseRepo(db *gorm.DB, baseLog *logger.Logger) OnboardingResponseRepo {
	return &onboardingResponseRepo{db: db, log: baseLog.With("repo", "OnboardingResponseRepo")}
}

func (r *onboardingResponseRepo) Create(ctx context.Context, tx *gorm.DB, row *types.OnboardingResponse) error {
	conn := tx
	if conn == nil {
		conn = r.db
	}
	return conn.WithContext(ctx).Create(row).Error
}

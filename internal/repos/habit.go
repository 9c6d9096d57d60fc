package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/types"
)

type HabitRepo interface {
	Create(ctx context.Context, tx *gorm.DB, habit *types.Habit) error
	CreateMany(ctx context.Context, tx *gorm.DB, habits []*types.Habit) error
	GetByID(ctx context.Context, tx *gorm.DB, habitID uuid.UUID) (*types.Habit, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Habit, error)
	Save(ctx context.Context, tx *gorm.DB, habit *types.Habit) error
	Delete(ctx context.Context, tx *gorm.DB, habitID uuid.UUID) error
}

type habitRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHabitRepo(db *gorm.DB, baseLog *logger.Logger) HabitRepo {
	return &habitRepo{db: db, log: baseLog.With("repo", "HabitRepo")}
}

func (r *habitRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *habitRepo) Create(ctx context.Context, tx *gorm.DB, habit *types.Habit) error {
	return r.conn(tx).WithContext(ctx).Create(habit).Error
}

func (r *habitRepo) CreateMany(ctx context.Context, tx *gorm.DB, habits []*types.Habit) error {
	if len(habits) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(habits).Error
}

func (r *habitRepo) GetByID(ctx context.Context, tx *gorm.DB, habitID uuid.UUID) (*types.Habit, error) {
	var row types.Habit
	err := r.conn(tx).WithContext(ctx).Where("id = ?", habitID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *habitRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Habit, error) {
	var rows []*types.Habit
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *habitRepo) Save(ctx context.Context, tx *gorm.DB, habit *types.Habit) error {
	return r.conn(tx).WithContext(ctx).Save(habit).Error
}

func (r *habitRepo) Delete(ctx context.Context, tx *gorm.DB, habitID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).Where("id = ?", habitID).Delete(&types.Habit{}).Error
}

type HabitFactionRepo interface {
	CreateMany(ctx context.Context, tx *gorm.DB, rows []*types.HabitFaction) error
	GetByHabitID(ctx context.Context, tx *gorm.DB, habitID uuid.UUID) ([]*types.HabitFaction, error)
	DeleteByHabitID(ctx context.Context, tx *gorm.DB, habitID uuid.UUID) error
}

type habitFactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHabitFactionRepo(db *gorm.DB, baseLog *logger.Logger) HabitFactionRepo {
	return &habitFactionRepo{db: db, log: baseLog.With("repo", "HabitFactionRepo")}
}

func (r *habitFactionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *habitFactionRepo) CreateMany(ctx context.Context, tx *gorm.DB, rows []*types.HabitFaction) error {
	if len(rows) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(rows).Error
}

func (r *habitFactionRepo) GetByHabitID(ctx context.Context, tx *gorm.DB, habitID uuid.UUID) ([]*types.HabitFaction, error) {
	var rows []*types.HabitFaction
	err := r.conn(tx).WithContext(ctx).
		Where("habit_id = ?", habitID).
		Order("weight DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *habitFactionRepo) DeleteByHabitID(ctx context.Context, tx *gorm.DB, habitID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).Where("habit_id = ?", habitID).Delete(&types.HabitFaction{}).Error
}

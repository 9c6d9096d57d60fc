package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	HabitTypePositive = "positive"
	HabitTypeNegative = "negative"
)

type Habit struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	User             *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Name             string         `gorm:"not null;column:name" json:"name"`
	HabitType        string         `gorm:"not null;column:habit_type" json:"habit_type"`
	Frequency        string         `gorm:"not null;default:daily;column:frequency" json:"frequency"`
	TargetDays       datatypes.JSON `gorm:"type:jsonb;column:target_days" json:"target_days"`
	CurrentStreak    int            `gorm:"not null;default:0;column:current_streak" json:"current_streak"`
	LongestStreak    int            `gorm:"not null;default:0;column:longest_streak" json:"longest_streak"`
	TotalCompletions int            `gorm:"not null;default:0;column:total_completions" json:"total_completions"`
	XPPerCompletion  int            `gorm:"not null;default:0;column:xp_per_completion" json:"xp_per_completion"`
	FactionID        string         `gorm:"not null;index;column:faction_id" json:"faction_id"`
	LastCompletedAt  *time.Time     `gorm:"column:last_completed_at" json:"last_completed_at,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Habit) TableName() string {
	return "habit"
}

// HabitFaction spreads a negative habit's weight over every faction it
// affects. The primary faction carries weight 60 (100 when it is the only
// one); the remainder is split evenly among the rest.
type HabitFaction struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	HabitID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_habit_faction;column:habit_id" json:"habit_id"`
	Habit     *Habit    `gorm:"constraint:OnDelete:CASCADE;foreignKey:HabitID;references:ID" json:"habit,omitempty"`
	FactionID string    `gorm:"not null;uniqueIndex:idx_habit_faction;column:faction_id" json:"faction_id"`
	Weight    int       `gorm:"not null;column:weight" json:"weight"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (HabitFaction) TableName() string {
	return "habit_faction"
}

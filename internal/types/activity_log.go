package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActivityHabitCompleted  = "habit_completed"
	ActivityHabitResisted   = "habit_resisted"
	ActivityQuestCompleted  = "quest_completed"
	ActivityOnboardingDone  = "onboarding_completed"
	ActivityQuestsGenerated = "quests_generated"
)

type ActivityLog struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Action    string    `gorm:"not null;column:action" json:"action"`
	FactionID string    `gorm:"column:faction_id" json:"faction_id"`
	Detail    string    `gorm:"column:detail" json:"detail"`
	XP        int       `gorm:"not null;default:0;column:xp" json:"xp"`
	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_log"
}

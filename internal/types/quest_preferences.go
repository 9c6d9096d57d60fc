package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type QuestPreferences struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID              uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex;column:user_id" json:"user_id"`
	User                *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	PreferredDifficulty string         `gorm:"not null;default:medium;column:preferred_difficulty" json:"preferred_difficulty"`
	FocusFactionIDs     datatypes.JSON `gorm:"type:jsonb;column:focus_faction_ids" json:"focus_faction_ids"`
	DailyQuestCount     int            `gorm:"not null;default:3;column:daily_quest_count" json:"daily_quest_count"`
	ThemeHints          datatypes.JSON `gorm:"type:jsonb;column:theme_hints" json:"theme_hints"`
	CreatedAt           time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (QuestPreferences) TableName() string {
	return "quest_preferences"
}

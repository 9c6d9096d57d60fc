package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	QuestTypeDaily  = "daily"
	QuestTypeWeekly = "weekly"
	QuestTypeStory  = "story"

	QuestDifficultyEasy   = "easy"
	QuestDifficultyMedium = "medium"
	QuestDifficultyHard   = "hard"
	QuestDifficultyEpic   = "epic"

	QuestStatusActive    = "active"
	QuestStatusCompleted = "completed"
	QuestStatusExpired   = "expired"
)

type Quest struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	User             *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	QuestType        string         `gorm:"not null;column:quest_type" json:"quest_type"`
	Difficulty       string         `gorm:"not null;column:difficulty" json:"difficulty"`
	Status           string         `gorm:"not null;default:active;column:status" json:"status"`
	Title            string         `gorm:"not null;column:title" json:"title"`
	Description      string         `gorm:"column:description" json:"description"`
	TargetSkillIDs   datatypes.JSON `gorm:"type:jsonb;column:target_skill_ids" json:"target_skill_ids"`
	TargetFactionIDs datatypes.JSON `gorm:"type:jsonb;column:target_faction_ids" json:"target_faction_ids"`
	XPReward         int            `gorm:"not null;default:0;column:xp_reward" json:"xp_reward"`
	RequiredActions  int            `gorm:"not null;default:1;column:required_actions" json:"required_actions"`
	CompletedActions int            `gorm:"not null;default:0;column:completed_actions" json:"completed_actions"`
	ExpiresAt        *time.Time     `gorm:"column:expires_at" json:"expires_at,omitempty"`
	AIModel          string         `gorm:"column:ai_model" json:"ai_model"`
	CompletedAt      *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Quest) TableName() string {
	return "quest"
}

func IsValidQuestType(t string) bool {
	return t == QuestTypeDaily || t == QuestTypeWeekly || t == QuestTypeStory
}

func IsValidQuestDifficulty(d string) bool {
	switch d {
	case QuestDifficultyEasy, QuestDifficultyMedium, QuestDifficultyHard, QuestDifficultyEpic:
		return true
	}
	return false
}

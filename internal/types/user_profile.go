package types

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is a denormalized summary over the user's faction stats. It is
// written at onboarding completion and refreshed by the XP aggregation
// service as XP accrues.
type UserProfile struct {
	ID                  uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:user_id" json:"user_id"`
	User                *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	TotalLevel          int       `gorm:"not null;default:1;column:total_level" json:"total_level"`
	TotalXP             int       `gorm:"not null;default:0;column:total_xp" json:"total_xp"`
	CharacterClass      string    `gorm:"not null;default:Abenteurer;column:character_class" json:"character_class"`
	OnboardingCompleted bool      `gorm:"not null;default:false;column:onboarding_completed" json:"onboarding_completed"`
	CreatedAt           time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt           time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profile"
}

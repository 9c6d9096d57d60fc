package types

import (
	"time"

	"github.com/google/uuid"
)

// SkillDomain groups user skills under a faction. Seeded at migration time;
// onboarding resolves requested skills against these rows.
type SkillDomain struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FactionID string    `gorm:"not null;index;column:faction_id" json:"faction_id"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (SkillDomain) TableName() string {
	return "skill_domain"
}

type UserSkill struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	User       *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	DomainID   uuid.UUID  `gorm:"type:uuid;not null;index;column:domain_id" json:"domain_id"`
	FactionID  string     `gorm:"not null;index;column:faction_id" json:"faction_id"`
	Name       string     `gorm:"not null;column:name" json:"name"`
	Level      int        `gorm:"not null;default:1;column:level" json:"level"`
	CurrentXP  int        `gorm:"not null;default:0;column:current_xp" json:"current_xp"`
	LastUsedAt *time.Time `gorm:"column:last_used_at" json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserSkill) TableName() string {
	return "user_skill"
}

package types

import (
	"time"

	"github.com/google/uuid"
)

type FactionStat struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_faction_stat_user_faction;column:user_id" json:"user_id"`
	User         *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	FactionID    string     `gorm:"not null;uniqueIndex:idx_faction_stat_user_faction;column:faction_id" json:"faction_id"`
	Level        int        `gorm:"not null;default:1;column:level" json:"level"`
	TotalXP      int        `gorm:"not null;default:0;column:total_xp" json:"total_xp"`
	WeeklyXP     int        `gorm:"not null;default:0;column:weekly_xp" json:"weekly_xp"`
	MonthlyXP    int        `gorm:"not null;default:0;column:monthly_xp" json:"monthly_xp"`
	Importance   int        `gorm:"not null;default:3;column:importance" json:"importance"`
	XPMultiplier float64    `gorm:"not null;default:1;column:xp_multiplier" json:"xp_multiplier"`
	LastActivity *time.Time `gorm:"column:last_activity" json:"last_activity,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (FactionStat) TableName() string {
	return "faction_stat"
}

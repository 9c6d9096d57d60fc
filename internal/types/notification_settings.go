package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationSettings struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex;column:user_id" json:"user_id"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Settings  datatypes.JSON `gorm:"type:jsonb;column:settings" json:"settings"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (NotificationSettings) TableName() string {
	return "notification_settings"
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel ids are generated in Go so every dialect behaves the same.
type BaseModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// All lists every model for AutoMigrate and for test fixtures.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Account{},
		&RefreshToken{},
		&Follow{},
		&Category{},
		&Service{},
		&Favorite{},
		&Flag{},
		&Talk{},
		&TalkMessage{},
		&Offer{},
		&Notification{},
		&PaymentTransaction{},
		&PaymentSubscription{},
		&Review{},
		&Community{},
		&CommunityMember{},
		&Upload{},
		&AuditLog{},
	}
}

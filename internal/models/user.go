package models

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	BaseModel
	Email        string                      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Username     string                      `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash string                      `gorm:"not null" json:"-"`
	FirstName    string                      `json:"firstName"`
	LastName     string                      `json:"lastName"`
	Bio          string                      `gorm:"type:text" json:"bio"`
	Avatar       string                      `json:"avatar"`
	Location     string                      `json:"location"`
	Skills       datatypes.JSONSlice[string] `json:"skills"`
	Role         UserRole                    `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Status       UserStatus                  `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	BanReason    string                      `json:"-"`
	BannedUntil  *time.Time                  `json:"-"`
	Rating       float64                     `gorm:"default:0" json:"rating"`
	ReviewCount  int                         `gorm:"default:0" json:"reviewCount"`
	LastSeenAt   *time.Time                  `json:"lastSeenAt,omitempty"`

	EmailNotifications bool              `gorm:"default:true" json:"emailNotifications"`
	PushNotifications  bool              `gorm:"default:true" json:"pushNotifications"`
	ProfileVisibility  ProfileVisibility `gorm:"type:varchar(20);default:'public'" json:"profileVisibility"`

	StripeCustomerID string `json:"-"`

	Account *Account `gorm:"foreignKey:UserID" json:"account,omitempty"`
}

// DisplayName is what other users see in talks and notifications.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		if u.LastName != "" {
			return u.FirstName + " " + u.LastName
		}
		return u.FirstName
	}
	return u.Username
}

// IsBanned also reports false once a temporary ban has expired.
func (u *User) IsBanned(now time.Time) bool {
	if u.Status != UserStatusBanned {
		return false
	}
	return u.BannedUntil == nil || now.Before(*u.BannedUntil)
}

// Account holds the user's simbi (internal currency) balance.
type Account struct {
	BaseModel
	UserID       string `gorm:"type:varchar(36);uniqueIndex;not null" json:"userId"`
	SimbiBalance int    `gorm:"not null;default:0" json:"simbiBalance"`
}

// RefreshToken stores only the SHA-256 of the issued token.
type RefreshToken struct {
	BaseModel
	UserID     string     `gorm:"type:varchar(36);not null;index" json:"-"`
	TokenHash  string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	DeviceInfo string     `json:"deviceInfo"`
	IPAddress  string     `json:"ipAddress"`
	ExpiresAt  time.Time  `gorm:"not null;index" json:"expiresAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}

type Follow struct {
	BaseModel
	FollowerID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_follow_pair" json:"followerId"`
	FollowedID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_follow_pair;index" json:"followedId"`
}

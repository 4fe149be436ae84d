package models

import (
	"time"

	"gorm.io/datatypes"
)

type Category struct {
	BaseModel
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Slug string `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
}

// Service is a marketplace listing: something a user offers or requests.
type Service struct {
	BaseModel
	UserID      string                      `gorm:"type:varchar(36);not null;index" json:"userId"`
	Title       string                      `gorm:"type:varchar(200);not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Kind        ServiceKind                 `gorm:"type:varchar(20);not null;index" json:"kind"`
	TradingType TradingType                 `gorm:"type:varchar(20);not null;default:'simbi'" json:"tradingType"`
	SimbiPrice  *int                        `json:"simbiPrice,omitempty"`
	USDPrice    *float64                    `gorm:"column:usd_price" json:"usdPrice,omitempty"`
	CategoryID  *string                     `gorm:"type:varchar(36);index" json:"categoryId,omitempty"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Images      datatypes.JSONSlice[string] `json:"images"`
	Lat         *float64                    `json:"lat,omitempty"`
	Lon         *float64                    `json:"lon,omitempty"`
	State       ServiceState                `gorm:"type:varchar(20);not null;default:'draft';index" json:"state"`
	ViewCount   int                         `gorm:"not null;default:0" json:"viewCount"`
	LikeCount   int                         `gorm:"not null;default:0" json:"likeCount"`
	PublishedAt *time.Time                  `json:"publishedAt,omitempty"`

	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

type Favorite struct {
	BaseModel
	UserID    string   `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorite_pair" json:"userId"`
	ServiceID string   `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorite_pair;index" json:"serviceId"`
	Service   *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}

// Flag is a user report against a service.
type Flag struct {
	BaseModel
	ReporterID string     `gorm:"type:varchar(36);not null;index" json:"reporterId"`
	ServiceID  string     `gorm:"type:varchar(36);not null;index" json:"serviceId"`
	Reason     string     `gorm:"not null" json:"reason"`
	Details    string     `gorm:"type:text" json:"details"`
	Resolved   bool       `gorm:"not null;default:false;index" json:"resolved"`
	ResolvedBy *string    `gorm:"type:varchar(36)" json:"resolvedBy,omitempty"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	Action     string     `json:"action,omitempty"`
	Resolution string     `gorm:"type:text" json:"resolution,omitempty"`

	Service *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}

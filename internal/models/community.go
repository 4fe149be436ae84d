package models

type Community struct {
	BaseModel
	Name        string `gorm:"type:varchar(120);not null" json:"name"`
	Slug        string `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Image       string `json:"image,omitempty"`
	Featured    bool   `gorm:"not null;default:false" json:"featured"`

	MemberCount int64 `gorm:"-" json:"memberCount"`
}

type CommunityMember struct {
	BaseModel
	CommunityID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_community_member" json:"communityId"`
	UserID      string `gorm:"type:varchar(36);not null;uniqueIndex:idx_community_member;index" json:"userId"`
}

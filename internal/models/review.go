package models

type Review struct {
	BaseModel
	ReviewerID string       `gorm:"type:varchar(36);not null;uniqueIndex:idx_review_unique" json:"reviewerId"`
	RevieweeID string       `gorm:"type:varchar(36);not null;uniqueIndex:idx_review_unique;index" json:"revieweeId"`
	ServiceID  string       `gorm:"type:varchar(36);not null;default:'';uniqueIndex:idx_review_unique" json:"serviceId,omitempty"`
	Rating     int          `gorm:"not null" json:"rating"`
	Content    string       `gorm:"type:text" json:"content"`
	Status     ReviewStatus `gorm:"type:varchar(20);not null;default:'published'" json:"status"`

	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

package models

// Upload tracks a stored file so it can be listed or removed later.
type Upload struct {
	BaseModel
	UserID          string `gorm:"type:varchar(36);not null;index" json:"userId"`
	Usage           string `gorm:"type:varchar(20);not null" json:"usage"` // "image", "avatar"
	Key             string `gorm:"not null;uniqueIndex" json:"key"`
	URL             string `gorm:"column:url" json:"url"`
	OriginalName    string `json:"originalName"`
	MimeType        string `json:"mimeType"`
	Size            int64  `json:"size"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	StorageProvider string `gorm:"default:'local'" json:"storageProvider"`
}

package dto

import (
	"time"

	"simbi_backend/internal/models"
)

type UpdateProfileRequest struct {
	FirstName *string  `json:"firstName,omitempty" validate:"omitempty,max=100"`
	LastName  *string  `json:"lastName,omitempty" validate:"omitempty,max=100"`
	Bio       *string  `json:"bio,omitempty" validate:"omitempty,max=2000"`
	Avatar    *string  `json:"avatar,omitempty" validate:"omitempty,max=500"`
	Location  *string  `json:"location,omitempty" validate:"omitempty,max=200"`
	Skills    []string `json:"skills,omitempty" validate:"omitempty,max=30,dive,min=1,max=50"`
}

type UpdateSettingsRequest struct {
	EmailNotifications *bool   `json:"emailNotifications,omitempty"`
	PushNotifications  *bool   `json:"pushNotifications,omitempty"`
	ProfileVisibility  *string `json:"profileVisibility,omitempty" validate:"omitempty,oneof=public private"`
}

// UserResponse is the caller's own view, including settings and balance.
type UserResponse struct {
	ID                 string                   `json:"id"`
	Email              string                   `json:"email"`
	Username           string                   `json:"username"`
	FirstName          string                   `json:"firstName"`
	LastName           string                   `json:"lastName"`
	Bio                string                   `json:"bio"`
	Avatar             string                   `json:"avatar"`
	Location           string                   `json:"location"`
	Skills             []string                 `json:"skills"`
	Role               models.UserRole          `json:"role"`
	Status             models.UserStatus        `json:"status"`
	Rating             float64                  `json:"rating"`
	ReviewCount        int                      `json:"reviewCount"`
	SimbiBalance       int                      `json:"simbiBalance"`
	EmailNotifications bool                     `json:"emailNotifications"`
	PushNotifications  bool                     `json:"pushNotifications"`
	ProfileVisibility  models.ProfileVisibility `json:"profileVisibility"`
	LastSeenAt         *time.Time               `json:"lastSeenAt,omitempty"`
	CreatedAt          time.Time                `json:"createdAt"`
	Counts             *UserCounts              `json:"counts,omitempty"`
}

type UserCounts struct {
	Services  int64 `json:"services"`
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Reviews   int64 `json:"reviews"`
}

func NewUserResponse(u *models.User) *UserResponse {
	resp := &UserResponse{
		ID:                 u.ID,
		Email:              u.Email,
		Username:           u.Username,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Bio:                u.Bio,
		Avatar:             u.Avatar,
		Location:           u.Location,
		Skills:             nonNilStrings(u.Skills),
		Role:               u.Role,
		Status:             u.Status,
		Rating:             u.Rating,
		ReviewCount:        u.ReviewCount,
		EmailNotifications: u.EmailNotifications,
		PushNotifications:  u.PushNotifications,
		ProfileVisibility:  u.ProfileVisibility,
		LastSeenAt:         u.LastSeenAt,
		CreatedAt:          u.CreatedAt,
	}
	if u.Account != nil {
		resp.SimbiBalance = u.Account.SimbiBalance
	}
	return resp
}

// PublicUserResponse is what other users may see.
type PublicUserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Bio         string     `json:"bio,omitempty"`
	Avatar      string     `json:"avatar"`
	Location    string     `json:"location,omitempty"`
	Skills      []string   `json:"skills"`
	Rating      float64    `json:"rating"`
	ReviewCount int        `json:"reviewCount"`
	LastSeenAt  *time.Time `json:"lastSeenAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// NewPublicUserResponse hides profile details of private accounts.
func NewPublicUserResponse(u *models.User) *PublicUserResponse {
	resp := &PublicUserResponse{
		ID:          u.ID,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Avatar:      u.Avatar,
		Skills:      []string{},
		Rating:      u.Rating,
		ReviewCount: u.ReviewCount,
		CreatedAt:   u.CreatedAt,
	}
	if u.ProfileVisibility != models.VisibilityPrivate {
		resp.Bio = u.Bio
		resp.Location = u.Location
		resp.Skills = nonNilStrings(u.Skills)
		resp.LastSeenAt = u.LastSeenAt
	}
	return resp
}

type ProfileResponse struct {
	User           *PublicUserResponse `json:"user"`
	RecentServices []*ServiceResponse  `json:"recentServices"`
	Followers      int64               `json:"followers"`
	Following      int64               `json:"following"`
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

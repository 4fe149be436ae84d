package dto

import (
	"time"

	"simbi_backend/internal/models"
)

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Username  string `json:"username,omitempty" validate:"omitempty,username"`
	FirstName string `json:"firstName,omitempty" validate:"omitempty,max=100"`
	LastName  string `json:"lastName,omitempty" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// ClientInfo is captured from the HTTP request for session listings.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

type AuthResponse struct {
	User         *UserResponse `json:"user"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresIn    int           `json:"expiresIn"` // seconds
}

type SessionResponse struct {
	ID         string     `json:"id"`
	DeviceInfo string     `json:"deviceInfo"`
	IPAddress  string     `json:"ipAddress"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  time.Time  `json:"expiresAt"`
}

func NewSessionResponse(t *models.RefreshToken) *SessionResponse {
	return &SessionResponse{
		ID:         t.ID,
		DeviceInfo: t.DeviceInfo,
		IPAddress:  t.IPAddress,
		CreatedAt:  t.CreatedAt,
		LastUsedAt: t.LastUsedAt,
		ExpiresAt:  t.ExpiresAt,
	}
}

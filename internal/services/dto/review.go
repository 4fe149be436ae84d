package dto

import (
	"time"

	"simbi_backend/internal/models"
)

type CreateReviewRequest struct {
	RevieweeID string `json:"revieweeId" validate:"required"`
	ServiceID  string `json:"serviceId,omitempty"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Content    string `json:"content" validate:"required,min=3,max=2000"`
}

type ReviewResponse struct {
	ID         string              `json:"id"`
	ReviewerID string              `json:"reviewerId"`
	RevieweeID string              `json:"revieweeId"`
	ServiceID  string              `json:"serviceId,omitempty"`
	Rating     int                 `json:"rating"`
	Content    string              `json:"content"`
	CreatedAt  time.Time           `json:"createdAt"`
	Reviewer   *PublicUserResponse `json:"reviewer,omitempty"`
}

func NewReviewResponse(r *models.Review) *ReviewResponse {
	resp := &ReviewResponse{
		ID:         r.ID,
		ReviewerID: r.ReviewerID,
		RevieweeID: r.RevieweeID,
		ServiceID:  r.ServiceID,
		Rating:     r.Rating,
		Content:    r.Content,
		CreatedAt:  r.CreatedAt,
	}
	if r.Reviewer != nil {
		resp.Reviewer = NewPublicUserResponse(r.Reviewer)
	}
	return resp
}

type ReviewListResponse struct {
	Reviews []*ReviewResponse `json:"reviews"`
	Pagination
}

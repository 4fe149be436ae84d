package services

import (
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"

	"simbi_backend/internal/logger"
	"simbi_backend/internal/models"
	"simbi_backend/internal/repositories"
	"simbi_backend/internal/services/dto"
	"simbi_backend/pkg/apperrors"
)

type ReviewService interface {
	CreateReview(db *gorm.DB, reviewerID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	GetUserReviews(db *gorm.DB, userID string, page, pageSize int) (*dto.ReviewListResponse, error)
}

type ReviewServiceImpl struct {
	reviewRepo          repositories.ReviewRepository
	userRepo            repositories.UserRepository
	serviceRepo         repositories.ServiceRepository
	notificationService NotificationService
}

func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	userRepo repositories.UserRepository,
	serviceRepo repositories.ServiceRepository,
	notificationService NotificationService,
) ReviewService {
	return &ReviewServiceImpl{
		reviewRepo:          reviewRepo,
		userRepo:            userRepo,
		serviceRepo:         serviceRepo,
		notificationService: notificationService,
	}
}

// CreateReview stores the review and recomputes the reviewee's rating in one transaction.
func (s *ReviewServiceImpl) CreateReview(db *gorm.DB, reviewerID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if reviewerID == req.RevieweeID {
		return nil, apperrors.ErrCannotReviewSelf
	}

	reviewer, err := s.userRepo.FindByID(db, reviewerID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if _, err := s.userRepo.FindByID(db, req.RevieweeID); err != nil {
		return nil, mapRepoError(err)
	}
	if req.ServiceID != "" {
		if _, err := s.serviceRepo.FindByIDAny(db, req.ServiceID); err != nil {
			return nil, mapRepoError(err)
		}
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	exists, err := s.reviewRepo.Exists(tx, reviewerID, req.RevieweeID, req.ServiceID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if exists {
		return nil, apperrors.ErrReviewAlreadyExists
	}

	review := &models.Review{
		ReviewerID: reviewerID,
		RevieweeID: req.RevieweeID,
		ServiceID:  req.ServiceID,
		Rating:     req.Rating,
		Content:    strings.TrimSpace(req.Content),
		Status:     models.ReviewStatusPublished,
	}
	if err := s.reviewRepo.Create(tx, review); err != nil {
		return nil, mapRepoError(err)
	}

	avg, count, err := s.reviewRepo.RatingSummary(tx, req.RevieweeID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	err = s.userRepo.UpdateFields(tx, req.RevieweeID, map[string]interface{}{
		"rating":       math.Round(avg*100) / 100,
		"review_count": count,
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	_, err = s.notificationService.Create(db, dto.CreateNotificationInput{
		UserID:    req.RevieweeID,
		Type:      models.NotificationReviewReceived,
		Title:     "New review",
		Content:   fmt.Sprintf("%s left you a %d-star review", reviewer.DisplayName(), req.Rating),
		Data:      map[string]interface{}{"reviewId": review.ID, "rating": req.Rating},
		ActionURL: "/profile/" + req.RevieweeID,
	})
	if err != nil {
		logger.CtxWithError(ctxOf(db), "Failed to create review notification", err, "review_id", review.ID)
	}

	review.Reviewer = reviewer
	return dto.NewReviewResponse(review), nil
}

func (s *ReviewServiceImpl) GetUserReviews(db *gorm.DB, userID string, page, pageSize int) (*dto.ReviewListResponse, error) {
	if _, err := s.userRepo.FindByID(db, userID); err != nil {
		return nil, mapRepoError(err)
	}
	page, pageSize = normalizePage(page, pageSize, 20, 100)

	reviews, total, err := s.reviewRepo.FindPublishedByReviewee(db, userID, page, pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]*dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, dto.NewReviewResponse(&reviews[i]))
	}
	return &dto.ReviewListResponse{
		Reviews:    out,
		Pagination: dto.NewPagination(total, page, pageSize),
	}, nil
}

package services

import (
	"gorm.io/gorm"

	"simbi_backend/internal/models"
	"simbi_backend/internal/repositories"
	"simbi_backend/pkg/apperrors"
)

type CommunityService interface {
	ListCommunities(db *gorm.DB) ([]models.Community, error)
	GetCommunity(db *gorm.DB, id string) (*models.Community, error)
	JoinCommunity(db *gorm.DB, userID, communityID string) (*models.Community, error)
	LeaveCommunity(db *gorm.DB, userID, communityID string) (*models.Community, error)
}

type CommunityServiceImpl struct {
	communityRepo repositories.CommunityRepository
}

func NewCommunityService(communityRepo repositories.CommunityRepository) CommunityService {
	return &CommunityServiceImpl{communityRepo: communityRepo}
}

func (s *CommunityServiceImpl) ListCommunities(db *gorm.DB) ([]models.Community, error) {
	communities, err := s.communityRepo.List(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if communities == nil {
		communities = []models.Community{}
	}
	return communities, nil
}

func (s *CommunityServiceImpl) GetCommunity(db *gorm.DB, id string) (*models.Community, error) {
	community, err := s.communityRepo.FindByID(db, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return community, nil
}

// JoinCommunity is idempotent.
func (s *CommunityServiceImpl) JoinCommunity(db *gorm.DB, userID, communityID string) (*models.Community, error) {
	if _, err := s.communityRepo.FindByID(db, communityID); err != nil {
		return nil, mapRepoError(err)
	}
	if _, err := s.communityRepo.Join(db, communityID, userID); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.GetCommunity(db, communityID)
}

func (s *CommunityServiceImpl) LeaveCommunity(db *gorm.DB, userID, communityID string) (*models.Community, error) {
	if _, err := s.communityRepo.FindByID(db, communityID); err != nil {
		return nil, mapRepoError(err)
	}
	if _, err := s.communityRepo.Leave(db, communityID, userID); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.GetCommunity(db, communityID)
}

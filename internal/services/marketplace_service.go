package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"simbi_backend/internal/logger"
	"simbi_backend/internal/models"
	"simbi_backend/internal/repositories"
	"simbi_backend/internal/services/dto"
	"simbi_backend/pkg/apperrors"
)

const (
	defaultServicePageSize = 20
	maxServicePageSize     = 100
)

// MarketplaceService manages service listings, likes and flags.
type MarketplaceService interface {
	CreateService(db *gorm.DB, userID string, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error)
	ListServices(db *gorm.DB, page, pageSize int) (*dto.ServiceListResponse, error)
	SearchServices(db *gorm.DB, req *dto.SearchServicesRequest) (*dto.ServiceListResponse, error)
	GetMyServices(db *gorm.DB, userID string) ([]*dto.ServiceResponse, error)
	GetFavorites(db *gorm.DB, userID string) ([]*dto.ServiceResponse, error)
	GetService(db *gorm.DB, serviceID string) (*dto.ServiceResponse, error)
	UpdateService(db *gorm.DB, userID, serviceID string, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error)
	DeleteService(db *gorm.DB, userID string, role models.UserRole, serviceID string) error
	PublishService(db *gorm.DB, userID, serviceID string) (*dto.ServiceResponse, error)
	LikeService(db *gorm.DB, userID, serviceID string) (*dto.LikeResponse, error)
	UnlikeService(db *gorm.DB, userID, serviceID string) (*dto.LikeResponse, error)
	FlagService(db *gorm.DB, userID, serviceID string, req *dto.FlagServiceRequest) (*models.Flag, error)
}

type MarketplaceServiceImpl struct {
	serviceRepo repositories.ServiceRepository
	flagRepo    repositories.FlagRepository
	now         func() time.Time
}

func NewMarketplaceService(serviceRepo repositories.ServiceRepository, flagRepo repositories.FlagRepository) MarketplaceService {
	return &MarketplaceServiceImpl{
		serviceRepo: serviceRepo,
		flagRepo:    flagRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *MarketplaceServiceImpl) CreateService(db *gorm.DB, userID string, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	service := &models.Service{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Kind:        models.ServiceKind(req.Kind),
		TradingType: models.TradingType(req.TradingType),
		SimbiPrice:  req.SimbiPrice,
		USDPrice:    req.USDPrice,
		CategoryID:  req.CategoryID,
		Tags:        req.Tags,
		Images:      req.Images,
		Lat:         req.Lat,
		Lon:         req.Lon,
		State:       models.ServiceStateDraft,
	}

	if err := s.serviceRepo.Create(db, service); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctxOf(db), "Service created", "service_id", service.ID, "user_id", userID)
	return dto.NewServiceResponse(service), nil
}

func (s *MarketplaceServiceImpl) ListServices(db *gorm.DB, page, pageSize int) (*dto.ServiceListResponse, error) {
	page, pageSize = normalizePage(page, pageSize, defaultServicePageSize, maxServicePageSize)
	return s.search(db, repositories.ServiceSearchCriteria{Page: page, Limit: pageSize})
}

func (s *MarketplaceServiceImpl) SearchServices(db *gorm.DB, req *dto.SearchServicesRequest) (*dto.ServiceListResponse, error) {
	page, limit := normalizePage(req.Page, req.Limit, defaultServicePageSize, maxServicePageSize)
	criteria := repositories.ServiceSearchCriteria{
		Query:       req.Query,
		Kind:        models.ServiceKind(req.Kind),
		TradingType: models.TradingType(req.TradingType),
		CategoryID:  req.CategoryID,
		Lat:         req.Lat,
		Lon:         req.Lon,
		Radius:      req.Radius,
		Page:        page,
		Limit:       limit,
		SortBy:      req.SortBy,
		SortOrder:   req.SortOrder,
	}
	return s.search(db, criteria)
}

func (s *MarketplaceServiceImpl) search(db *gorm.DB, criteria repositories.ServiceSearchCriteria) (*dto.ServiceListResponse, error) {
	services, total, err := s.serviceRepo.Search(db, criteria)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	pagination := dto.NewPagination(total, criteria.Page, criteria.Limit)
	return &dto.ServiceListResponse{
		Services: dto.NewServiceResponses(services),
		Total:    total,
		Page:     criteria.Page,
		Pages:    pagination.Pages,
	}, nil
}

func (s *MarketplaceServiceImpl) GetMyServices(db *gorm.DB, userID string) ([]*dto.ServiceResponse, error) {
	services, err := s.serviceRepo.FindByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewServiceResponses(services), nil
}

func (s *MarketplaceServiceImpl) GetFavorites(db *gorm.DB, userID string) ([]*dto.ServiceResponse, error) {
	services, err := s.serviceRepo.FindFavorites(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewServiceResponses(services), nil
}

// GetService counts a view on every successful read.
func (s *MarketplaceServiceImpl) GetService(db *gorm.DB, serviceID string) (*dto.ServiceResponse, error) {
	service, err := s.serviceRepo.FindByID(db, serviceID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := s.serviceRepo.IncrementViewCount(db, serviceID); err != nil {
		return nil, apperrors.InternalError(err)
	}
	service.ViewCount++
	return dto.NewServiceResponse(service), nil
}

func (s *MarketplaceServiceImpl) UpdateService(db *gorm.DB, userID, serviceID string, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error) {
	service, err := s.ownedService(db, userID, serviceID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		service.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		service.Description = *req.Description
	}
	if req.Kind != nil {
		service.Kind = models.ServiceKind(*req.Kind)
	}
	if req.TradingType != nil {
		service.TradingType = models.TradingType(*req.TradingType)
	}
	if req.SimbiPrice != nil {
		service.SimbiPrice = req.SimbiPrice
	}
	if req.USDPrice != nil {
		service.USDPrice = req.USDPrice
	}
	if req.CategoryID != nil {
		service.CategoryID = req.CategoryID
	}
	if req.Tags != nil {
		service.Tags = req.Tags
	}
	if req.Images != nil {
		service.Images = req.Images
	}
	if req.Lat != nil {
		service.Lat = req.Lat
	}
	if req.Lon != nil {
		service.Lon = req.Lon
	}

	if err := s.serviceRepo.Update(db, service); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewServiceResponse(service), nil
}

// DeleteService soft-deletes. Moderators and admins may delete any service.
func (s *MarketplaceServiceImpl) DeleteService(db *gorm.DB, userID string, role models.UserRole, serviceID string) error {
	service, err := s.serviceRepo.FindByID(db, serviceID)
	if err != nil {
		return mapRepoError(err)
	}

	if service.UserID != userID && role != models.UserRoleAdmin && role != models.UserRoleModerator {
		return apperrors.ErrNotServiceOwner
	}

	if err := s.serviceRepo.UpdateFields(db, serviceID, map[string]interface{}{"state": models.ServiceStateDeleted}); err != nil {
		return mapRepoError(err)
	}

	logger.CtxInfo(ctxOf(db), "Service deleted", "service_id", serviceID, "by", userID)
	return nil
}

func (s *MarketplaceServiceImpl) PublishService(db *gorm.DB, userID, serviceID string) (*dto.ServiceResponse, error) {
	service, err := s.ownedService(db, userID, serviceID)
	if err != nil {
		return nil, err
	}
	if service.State == models.ServiceStateHidden {
		return nil, apperrors.ErrInvalidStatus("service", "Service was hidden by a moderator")
	}

	now := s.now()
	service.State = models.ServiceStateActive
	if service.PublishedAt == nil {
		service.PublishedAt = &now
	}
	if err := s.serviceRepo.Update(db, service); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewServiceResponse(service), nil
}

// LikeService only increments likeCount for a newly created favorite.
func (s *MarketplaceServiceImpl) LikeService(db *gorm.DB, userID, serviceID string) (*dto.LikeResponse, error) {
	return s.toggleLike(db, userID, serviceID, true)
}

func (s *MarketplaceServiceImpl) UnlikeService(db *gorm.DB, userID, serviceID string) (*dto.LikeResponse, error) {
	return s.toggleLike(db, userID, serviceID, false)
}

func (s *MarketplaceServiceImpl) toggleLike(db *gorm.DB, userID, serviceID string, like bool) (*dto.LikeResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if _, err := s.serviceRepo.FindByID(tx, serviceID); err != nil {
		return nil, mapRepoError(err)
	}

	var (
		changed bool
		err     error
		delta   = 1
	)
	if like {
		changed, err = s.serviceRepo.AddFavorite(tx, userID, serviceID)
	} else {
		changed, err = s.serviceRepo.RemoveFavorite(tx, userID, serviceID)
		delta = -1
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if changed {
		if err := s.serviceRepo.AdjustLikeCount(tx, serviceID, delta); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	service, err := s.serviceRepo.FindByID(tx, serviceID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.LikeResponse{Liked: like, LikeCount: service.LikeCount}, nil
}

// FlagService returns the reporter's existing open flag instead of a duplicate.
func (s *MarketplaceServiceImpl) FlagService(db *gorm.DB, userID, serviceID string, req *dto.FlagServiceRequest) (*models.Flag, error) {
	if _, err := s.serviceRepo.FindByID(db, serviceID); err != nil {
		return nil, mapRepoError(err)
	}

	existing, err := s.flagRepo.FindOpen(db, userID, serviceID)
	if err == nil {
		return existing, nil
	}
	if !apperrors.Is(err, repositories.ErrFlagNotFound) {
		return nil, apperrors.InternalError(err)
	}

	flag := &models.Flag{
		ReporterID: userID,
		ServiceID:  serviceID,
		Reason:     strings.TrimSpace(req.Reason),
		Details:    req.Details,
	}
	if err := s.flagRepo.Create(db, flag); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctxOf(db), "Service flagged", "service_id", serviceID, "reporter_id", userID)
	return flag, nil
}

func (s *MarketplaceServiceImpl) ownedService(db *gorm.DB, userID, serviceID string) (*models.Service, error) {
	service, err := s.serviceRepo.FindByID(db, serviceID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if service.UserID != userID {
		return nil, apperrors.ErrNotServiceOwner
	}
	return service, nil
}

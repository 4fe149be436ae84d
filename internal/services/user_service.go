package services

import (
	"strings"

	"gorm.io/gorm"

	"simbi_backend/internal/logger"
	"simbi_backend/internal/models"
	"simbi_backend/internal/repositories"
	"simbi_backend/internal/services/dto"
	"simbi_backend/pkg/apperrors"
)

const (
	profileRecentServices = 10
	suggestedUsersLimit   = 20
)

type UserService interface {
	GetProfile(db *gorm.DB, userID string) (*dto.ProfileResponse, error)
	GetProfileByUsername(db *gorm.DB, username string) (*dto.ProfileResponse, error)
	UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	UpdateSettings(db *gorm.DB, userID string, req *dto.UpdateSettingsRequest) (*dto.UserResponse, error)
	Follow(db *gorm.DB, followerID, followedID string) error
	Unfollow(db *gorm.DB, followerID, followedID string) error
	GetFollowers(db *gorm.DB, userID string) ([]*dto.PublicUserResponse, error)
	GetFollowing(db *gorm.DB, userID string) ([]*dto.PublicUserResponse, error)
	GetSuggested(db *gorm.DB, userID string) ([]*dto.PublicUserResponse, error)
}

type UserServiceImpl struct {
	userRepo            repositories.UserRepository
	followRepo          repositories.FollowRepository
	serviceRepo         repositories.ServiceRepository
	notificationService NotificationService
}

func NewUserService(
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	serviceRepo repositories.ServiceRepository,
	notificationService NotificationService,
) UserService {
	return &UserServiceImpl{
		userRepo:            userRepo,
		followRepo:          followRepo,
		serviceRepo:         serviceRepo,
		notificationService: notificationService,
	}
}

func (s *UserServiceImpl) GetProfile(db *gorm.DB, userID string) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return s.buildProfile(db, user)
}

func (s *UserServiceImpl) GetProfileByUsername(db *gorm.DB, username string) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.FindByUsername(db, username)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return s.buildProfile(db, user)
}

func (s *UserServiceImpl) buildProfile(db *gorm.DB, user *models.User) (*dto.ProfileResponse, error) {
	services, err := s.serviceRepo.FindRecentActiveByUser(db, user.ID, profileRecentServices)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	followers, err := s.followRepo.CountFollowers(db, user.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	following, err := s.followRepo.CountFollowing(db, user.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.ProfileResponse{
		User:           dto.NewPublicUserResponse(user),
		RecentServices: dto.NewServiceResponses(services),
		Followers:      followers,
		Following:      following,
	}, nil
}

func (s *UserServiceImpl) UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Location != nil {
		user.Location = strings.TrimSpace(*req.Location)
	}
	if req.Skills != nil {
		user.Skills = req.Skills
	}

	if err := s.userRepo.Update(db, user); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewUserResponse(user), nil
}

func (s *UserServiceImpl) UpdateSettings(db *gorm.DB, userID string, req *dto.UpdateSettingsRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	if req.EmailNotifications != nil {
		user.EmailNotifications = *req.EmailNotifications
	}
	if req.PushNotifications != nil {
		user.PushNotifications = *req.PushNotifications
	}
	if req.ProfileVisibility != nil {
		user.ProfileVisibility = models.ProfileVisibility(*req.ProfileVisibility)
	}

	if err := s.userRepo.Update(db, user); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewUserResponse(user), nil
}

// Follow is idempotent; the followed user is notified only the first time.
func (s *UserServiceImpl) Follow(db *gorm.DB, followerID, followedID string) error {
	if followerID == followedID {
		return apperrors.ErrCannotFollowSelf
	}

	follower, err := s.userRepo.FindByID(db, followerID)
	if err != nil {
		return mapRepoError(err)
	}
	if _, err := s.userRepo.FindByID(db, followedID); err != nil {
		return mapRepoError(err)
	}

	created, err := s.followRepo.Follow(db, followerID, followedID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if !created {
		return nil
	}

	_, err = s.notificationService.Create(db, dto.CreateNotificationInput{
		UserID:    followedID,
		Type:      models.NotificationNewFollower,
		Title:     "New follower",
		Content:   follower.DisplayName() + " started following you",
		Data:      map[string]interface{}{"followerId": followerID},
		ActionURL: "/profile/" + follower.Username,
	})
	if err != nil {
		logger.CtxWithError(ctxOf(db), "Failed to create follow notification", err, "user_id", followedID)
	}
	return nil
}

func (s *UserServiceImpl) Unfollow(db *gorm.DB, followerID, followedID string) error {
	if followerID == followedID {
		return apperrors.ErrCannotFollowSelf
	}
	if _, err := s.followRepo.Unfollow(db, followerID, followedID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *UserServiceImpl) GetFollowers(db *gorm.DB, userID string) ([]*dto.PublicUserResponse, error) {
	if _, err := s.userRepo.FindByID(db, userID); err != nil {
		return nil, mapRepoError(err)
	}
	users, err := s.followRepo.FindFollowers(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return publicUsers(users), nil
}

func (s *UserServiceImpl) GetFollowing(db *gorm.DB, userID string) ([]*dto.PublicUserResponse, error) {
	if _, err := s.userRepo.FindByID(db, userID); err != nil {
		return nil, mapRepoError(err)
	}
	users, err := s.followRepo.FindFollowing(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return publicUsers(users), nil
}

func (s *UserServiceImpl) GetSuggested(db *gorm.DB, userID string) ([]*dto.PublicUserResponse, error) {
	users, err := s.followRepo.FindSuggested(db, userID, suggestedUsersLimit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return publicUsers(users), nil
}

func publicUsers(users []models.User) []*dto.PublicUserResponse {
	out := make([]*dto.PublicUserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewPublicUserResponse(&users[i]))
	}
	return out
}

package services

import (
	"time"

	"simbi_backend/internal/imageprocessor"
	"simbi_backend/internal/jobs"
	"simbi_backend/internal/repositories"
	"simbi_backend/internal/services/payment"
	"simbi_backend/internal/storage"
)

// ServiceContainer holds every service of the application.
type ServiceContainer struct {
	AuthService         AuthService
	UserService         UserService
	MarketplaceService  MarketplaceService
	TalkService         TalkService
	NotificationService NotificationService
	PaymentService      PaymentService
	ReviewService       ReviewService
	CommunityService    CommunityService
	UploadService       UploadService
	AdminService        AdminService
}

// Dependencies are the infrastructure pieces services are built on.
type Dependencies struct {
	Realtime   RealtimePublisher
	Dispatcher jobs.Dispatcher
	Gateway    payment.Gateway
	Storage    storage.Storage
	Processor  *imageprocessor.Processor

	RefreshTokenTTL    time.Duration
	Currency           string
	WebhookSecret      string
	UploadMaxSize      int64
	UploadAllowedTypes []string
}

// Repositories groups the stateless repositories.
type Repositories struct {
	User         repositories.UserRepository
	Follow       repositories.FollowRepository
	RefreshToken repositories.RefreshTokenRepository
	Service      repositories.ServiceRepository
	Flag         repositories.FlagRepository
	Talk         repositories.TalkRepository
	Notification repositories.NotificationRepository
	Payment      repositories.PaymentRepository
	Review       repositories.ReviewRepository
	Community    repositories.CommunityRepository
	Upload       repositories.UploadRepository
	AuditLog     repositories.AuditLogRepository
}

func NewRepositories() *Repositories {
	return &Repositories{
		User:         repositories.NewUserRepository(),
		Follow:       repositories.NewFollowRepository(),
		RefreshToken: repositories.NewRefreshTokenRepository(),
		Service:      repositories.NewServiceRepository(),
		Flag:         repositories.NewFlagRepository(),
		Talk:         repositories.NewTalkRepository(),
		Notification: repositories.NewNotificationRepository(),
		Payment:      repositories.NewPaymentRepository(),
		Review:       repositories.NewReviewRepository(),
		Community:    repositories.NewCommunityRepository(),
		Upload:       repositories.NewUploadRepository(),
		AuditLog:     repositories.NewAuditLogRepository(),
	}
}

func NewServiceContainer(repos *Repositories, deps Dependencies) *ServiceContainer {
	if deps.Realtime == nil {
		deps.Realtime = NopPublisher{}
	}
	if deps.Processor == nil {
		deps.Processor = imageprocessor.NewProcessor(0)
	}

	notificationService := NewNotificationService(repos.Notification, repos.User, deps.Realtime, deps.Dispatcher)

	return &ServiceContainer{
		AuthService: NewAuthService(repos.User, repos.RefreshToken, repos.Follow, repos.Service,
			deps.Dispatcher, deps.RefreshTokenTTL),
		UserService:         NewUserService(repos.User, repos.Follow, repos.Service, notificationService),
		MarketplaceService:  NewMarketplaceService(repos.Service, repos.Flag),
		TalkService:         NewTalkService(repos.Talk, repos.User, repos.Service, notificationService, deps.Realtime),
		NotificationService: notificationService,
		PaymentService: NewPaymentService(deps.Gateway, repos.Payment, repos.User, notificationService,
			deps.Currency, deps.WebhookSecret),
		ReviewService:    NewReviewService(repos.Review, repos.User, repos.Service, notificationService),
		CommunityService: NewCommunityService(repos.Community),
		UploadService: NewUploadService(deps.Storage, deps.Processor, repos.Upload, repos.User,
			deps.UploadMaxSize, deps.UploadAllowedTypes),
		AdminService: NewAdminService(repos.User, repos.RefreshToken, repos.Service, repos.Flag,
			repos.Talk, repos.AuditLog, deps.Realtime),
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"simbi_backend/internal/auth"
	"simbi_backend/internal/config"
	"simbi_backend/internal/database"
	"simbi_backend/internal/email"
	"simbi_backend/internal/handlers"
	"simbi_backend/internal/imageprocessor"
	"simbi_backend/internal/jobs"
	"simbi_backend/internal/logger"
	"simbi_backend/internal/middleware"
	"simbi_backend/internal/models"
	"simbi_backend/internal/repositories"
	"simbi_backend/internal/routes"
	"simbi_backend/internal/services"
	"simbi_backend/internal/services/payment"
	"simbi_backend/internal/storage"
	"simbi_backend/internal/validator"
	"simbi_backend/internal/workers"
	"simbi_backend/ws"
)

// App is the assembled server: router, realtime hub and background workers.
type App struct {
	cfg        *config.Config
	db         *gorm.DB
	redis      *redis.Client
	router     *gin.Engine
	hub        *ws.Hub
	dispatcher jobs.Dispatcher
	jobServer  *jobs.JobServer
	worker     *workers.MaintenanceWorker
	Services   *services.ServiceContainer
}

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.InitWithLevel(cfg.Server.Env, cfg.Logging.Level)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			logger.Fatal("Failed to migrate database", "error", err)
		}
	}

	if err := seedFirstAdmin(db, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := New(cfg, db)
	if err != nil {
		logger.Fatal("Failed to build application", "error", err)
	}
	if err := application.Serve(ctx); err != nil {
		logger.Fatal("Server error", "error", err)
	}
	logger.Info("Server stopped")
}

// New wires every component. It does not start anything.
func New(cfg *config.Config, db *gorm.DB) (*App, error) {
	auth.Configure(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute, cfg.JWT.Issuer)

	a := &App{cfg: cfg, db: db, hub: ws.NewHub()}

	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	if err := a.initJobs(); err != nil {
		return nil, err
	}

	store, err := storage.New(storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	logger.Info("Storage initialized", "type", store.Provider())

	repos := services.NewRepositories()
	a.Services = services.NewServiceContainer(repos, services.Dependencies{
		Realtime:           a.hub,
		Dispatcher:         a.dispatcher,
		Gateway:            payment.NewStripeGateway(cfg.Stripe.SecretKey),
		Storage:            store,
		Processor:          imageprocessor.NewProcessor(cfg.Upload.ImageQuality),
		RefreshTokenTTL:    cfg.JWT.RefreshTTL,
		Currency:           cfg.Stripe.Currency,
		WebhookSecret:      cfg.Stripe.WebhookSecret,
		UploadMaxSize:      cfg.Upload.MaxSize,
		UploadAllowedTypes: cfg.Upload.AllowedTypes,
	})

	v := validator.New()
	appHandlers := initializeHandlers(a.Services, repos, handlers.NewBaseHandler(v), a.authLimiter(), db, a.redis, a.hub)
	wsHandler := ws.NewWebSocketHandler(a.hub, db, a.Services.TalkService, repos.User, v, cfg.CORS.AllowedOrigins)

	uploadsDir := ""
	if local, ok := store.(*storage.LocalStorage); ok {
		uploadsDir = local.Root()
	}
	a.router = SetupRouter(cfg, db, appHandlers, wsHandler, uploadsDir)

	a.worker = workers.NewMaintenanceWorker(db, workers.Schedule{
		TokenCleanup:          cfg.Workers.TokenCleanupSpec,
		NotificationCleanup:   cfg.Workers.NotificationCleanupSpec,
		NotificationRetention: time.Duration(cfg.Workers.NotificationRetention) * 24 * time.Hour,
	}, repos.RefreshToken, repos.Notification)

	return a, nil
}

func (a *App) initJobs() error {
	provider, err := email.NewProvider(email.Config{
		Provider:     a.cfg.Email.Provider,
		SMTPHost:     a.cfg.Email.SMTPHost,
		SMTPPort:     a.cfg.Email.SMTPPort,
		SMTPUsername: a.cfg.Email.SMTPUsername,
		SMTPPassword: a.cfg.Email.SMTPPassword,
		UseTLS:       a.cfg.Email.UseTLS,
		ResendAPIKey: a.cfg.Email.ResendAPIKey,
		FromEmail:    a.cfg.Email.FromEmail,
		FromName:     a.cfg.Email.FromName,
	})
	if err != nil {
		return fmt.Errorf("init email provider: %w", err)
	}
	mailer, err := email.NewMailer(provider, a.cfg.Email.FrontendURL)
	if err != nil {
		return fmt.Errorf("init mailer: %w", err)
	}
	jobHandlers := jobs.NewHandlers(mailer)

	if a.cfg.Jobs.Enabled && a.cfg.Redis.Addr != "" {
		redisOpt := asynq.RedisClientOpt{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		}
		a.dispatcher = jobs.NewAsynqDispatcher(redisOpt)
		a.jobServer = jobs.NewJobServer(redisOpt, a.cfg.Jobs.Concurrency, jobHandlers)
		logger.Info("Background jobs use asynq", "redis", a.cfg.Redis.Addr)
		return nil
	}

	a.dispatcher = jobs.NewInlineDispatcher(jobHandlers)
	logger.Warn("Background jobs run inline; set jobs.enabled and redis.addr to use asynq")
	return nil
}

func (a *App) authLimiter() gin.HandlerFunc {
	if !a.cfg.RateLimit.Enabled {
		return nil
	}
	limiter := middleware.NewRateLimiter(context.Background(), a.redis, a.cfg.RateLimit.Requests, a.cfg.RateLimit.Window)
	return middleware.RateLimitMiddleware(limiter)
}

func (a *App) Router() *gin.Engine { return a.router }

func (a *App) Hub() *ws.Hub { return a.hub }

// Serve runs the HTTP server, the hub, the job server and the maintenance
// worker until ctx is cancelled or one of them fails, then shuts all down.
func (a *App) Serve(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      a.router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	g.Go(func() error {
		a.hub.Run()
		return nil
	})

	g.Go(func() error {
		logger.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.worker.Start(gctx)
	})

	if a.jobServer != nil {
		if err := a.jobServer.Start(); err != nil {
			return fmt.Errorf("start job server: %w", err)
		}
	}

	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown(srv)
	})

	return g.Wait()
}

func (a *App) shutdown(srv *http.Server) error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("Shutting down", "timeout", timeout.String())

	err := srv.Shutdown(ctx)
	if hubErr := a.hub.Shutdown(ctx); hubErr != nil {
		logger.Warn("Hub shutdown incomplete", "error", hubErr)
	}
	if a.jobServer != nil {
		a.jobServer.Stop()
	}
	if a.dispatcher != nil {
		if cerr := a.dispatcher.Close(); cerr != nil {
			logger.Warn("Dispatcher close failed", "error", cerr)
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	return err
}

// Close releases what New acquired. Used when Serve is never called.
func (a *App) Close() error {
	if a.dispatcher != nil {
		_ = a.dispatcher.Close()
	}
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

func SetupRouter(cfg *config.Config, db *gorm.DB, appHandlers *handlers.AppHandlers, wsHandler *ws.WebSocketHandler, uploadsDir string) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.DBMiddleware(db))

	routes.RegisterRoutes(router, appHandlers, wsHandler, routes.SystemOptions{
		Swagger:    !cfg.IsProduction(),
		UploadsDir: uploadsDir,
	})
	return router
}

func initializeHandlers(
	svc *services.ServiceContainer,
	repos *services.Repositories,
	base *handlers.BaseHandler,
	authLimiter gin.HandlerFunc,
	db *gorm.DB,
	redisClient *redis.Client,
	hub *ws.Hub,
) *handlers.AppHandlers {
	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(base, svc.AuthService, authLimiter),
		UserHandler:         handlers.NewUserHandler(base, svc.UserService),
		ServiceHandler:      handlers.NewServiceHandler(base, svc.MarketplaceService),
		TalkHandler:         handlers.NewTalkHandler(base, svc.TalkService),
		NotificationHandler: handlers.NewNotificationHandler(base, svc.NotificationService),
		PaymentHandler:      handlers.NewPaymentHandler(base, svc.PaymentService),
		ReviewHandler:       handlers.NewReviewHandler(base, svc.ReviewService),
		CommunityHandler:    handlers.NewCommunityHandler(base, svc.CommunityService),
		UploadHandler:       handlers.NewUploadHandler(base, svc.UploadService),
		AdminHandler:        handlers.NewAdminHandler(base, svc.AdminService, repos.User),
		HealthHandler:       handlers.NewHealthHandler(db, redisClient, hub),
	}
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.Admin.Email
	adminPassword := cfg.Admin.Password

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	var adminUser models.User
	result := tx.Where("email = ?", adminEmail).First(&adminUser)
	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	logger.Warn("No admin user found with specified email. Creating first admin...", "email", adminEmail)

	hashedPassword, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	username, err := services.UniqueUsername(tx, repositories.NewUserRepository(), adminEmail)
	if err != nil {
		return fmt.Errorf("failed to pick admin username: %w", err)
	}

	newAdmin := &models.User{
		Email:              adminEmail,
		Username:           username,
		PasswordHash:       hashedPassword,
		Role:               models.UserRoleAdmin,
		Status:             models.UserStatusActive,
		ProfileVisibility:  models.VisibilityPublic,
		EmailNotifications: true,
	}
	if err := tx.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	// every user owns an account row
	if err := tx.Create(&models.Account{UserID: newAdmin.ID, SimbiBalance: services.StartingSimbiBalance}).Error; err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	logger.Info("Created first admin user", "email", adminEmail)
	return tx.Commit().Error
}

package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"simbi_backend/internal/auth"
	"simbi_backend/internal/jobs"
	"simbi_backend/internal/logger"
	"simbi_backend/internal/models"
	"simbi_backend/internal/repositories"
	"simbi_backend/internal/services/dto"
	"simbi_backend/pkg/apperrors"
)

// StartingSimbiBalance is credited to every new account.
const StartingSimbiBalance = 50

type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest, client dto.ClientInfo) (*dto.AuthResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest, client dto.ClientInfo) (*dto.AuthResponse, error)
	RefreshToken(db *gorm.DB, refreshToken string, client dto.ClientInfo) (*dto.AuthResponse, error)
	Logout(db *gorm.DB, refreshToken string) error
	LogoutAll(db *gorm.DB, userID string) error
	ListSessions(db *gorm.DB, userID string) ([]*dto.SessionResponse, error)
	RevokeSession(db *gorm.DB, userID, sessionID string) error
	Me(db *gorm.DB, userID string) (*dto.UserResponse, error)
}

type AuthServiceImpl struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	followRepo       repositories.FollowRepository
	serviceRepo      repositories.ServiceRepository
	dispatcher       jobs.Dispatcher
	refreshTTL       time.Duration
	now              func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	followRepo repositories.FollowRepository,
	serviceRepo repositories.ServiceRepository,
	dispatcher jobs.Dispatcher,
	refreshTTL time.Duration,
) AuthService {
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &AuthServiceImpl{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		followRepo:       followRepo,
		serviceRepo:      serviceRepo,
		dispatcher:       dispatcher,
		refreshTTL:       refreshTTL,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Register creates the user, the account and a first session in one transaction.
func (s *AuthServiceImpl) Register(db *gorm.DB, req *dto.RegisterRequest, client dto.ClientInfo) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ValidationError(map[string]string{"password": err.Error()})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if _, err := s.userRepo.FindByEmail(tx, email); err == nil {
		return nil, apperrors.ErrEmailAlreadyExists
	} else if !apperrors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.InternalError(err)
	}

	username := req.Username
	if username != "" {
		taken, err := s.userRepo.UsernameExists(tx, username)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if taken {
			return nil, apperrors.ErrUsernameTaken
		}
	} else {
		generated, err := UniqueUsername(tx, s.userRepo, email)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		username = generated
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:              email,
		Username:           username,
		PasswordHash:       hash,
		FirstName:          strings.TrimSpace(req.FirstName),
		LastName:           strings.TrimSpace(req.LastName),
		Role:               models.UserRoleUser,
		Status:             models.UserStatusActive,
		EmailNotifications: true,
		PushNotifications:  true,
		ProfileVisibility:  models.VisibilityPublic,
	}
	if err := s.userRepo.Create(tx, user); err != nil {
		return nil, mapRepoError(err)
	}

	account := &models.Account{UserID: user.ID, SimbiBalance: StartingSimbiBalance}
	if err := s.userRepo.CreateAccount(tx, account); err != nil {
		return nil, apperrors.InternalError(err)
	}
	user.Account = account

	resp, err := s.issueTokens(tx, user, client)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	ctx := ctxOf(db)
	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueWelcomeEmail(ctx, jobs.WelcomeEmailPayload{To: user.Email, Name: user.DisplayName()}); err != nil {
			logger.CtxWithError(ctx, "Failed to enqueue welcome email", err, "user_id", user.ID)
		}
	}
	logger.CtxInfo(ctx, "User registered", "user_id", user.ID)

	return resp, nil
}

func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest, client dto.ClientInfo) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, strings.TrimSpace(req.Email))
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.checkUserStatus(db, user); err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.userRepo.TouchLastSeen(db, user.ID, now); err != nil {
		return nil, apperrors.InternalError(err)
	}
	user.LastSeenAt = &now

	return s.issueTokens(db, user, client)
}

// RefreshToken rotates the refresh token: the presented one is consumed.
func (s *AuthServiceImpl) RefreshToken(db *gorm.DB, refreshToken string, client dto.ClientInfo) (*dto.AuthResponse, error) {
	hash := auth.HashToken(refreshToken)

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	token, err := s.refreshTokenRepo.FindByHash(tx, hash)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	if err := s.refreshTokenRepo.DeleteByHash(tx, hash); err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	if s.now().After(token.ExpiresAt) {
		// commit so the expired token is gone
		_ = tx.Commit().Error
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(tx, token.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	if err := s.checkUserStatus(tx, user); err != nil {
		return nil, err
	}

	resp, err := s.issueTokens(tx, user, client)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return resp, nil
}

func (s *AuthServiceImpl) Logout(db *gorm.DB, refreshToken string) error {
	err := s.refreshTokenRepo.DeleteByHash(db, auth.HashToken(refreshToken))
	if err != nil && !apperrors.Is(err, repositories.ErrRefreshTokenNotFound) {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *AuthServiceImpl) LogoutAll(db *gorm.DB, userID string) error {
	n, err := s.refreshTokenRepo.DeleteByUserID(db, userID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctxOf(db), "All sessions revoked", "user_id", userID, "count", n)
	return nil
}

func (s *AuthServiceImpl) ListSessions(db *gorm.DB, userID string) ([]*dto.SessionResponse, error) {
	tokens, err := s.refreshTokenRepo.FindActiveByUserID(db, userID, s.now())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	sessions := make([]*dto.SessionResponse, 0, len(tokens))
	for i := range tokens {
		sessions = append(sessions, dto.NewSessionResponse(&tokens[i]))
	}
	return sessions, nil
}

func (s *AuthServiceImpl) RevokeSession(db *gorm.DB, userID, sessionID string) error {
	return mapRepoError(s.refreshTokenRepo.DeleteSession(db, userID, sessionID))
}

func (s *AuthServiceImpl) Me(db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return buildUserResponseWithCounts(db, user, s.followRepo, s.serviceRepo)
}

// ---------------- helpers ----------------

func (s *AuthServiceImpl) issueTokens(db *gorm.DB, user *models.User, client dto.ClientInfo) (*dto.AuthResponse, error) {
	accessToken, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refreshToken, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	now := s.now()
	record := &models.RefreshToken{
		UserID:     user.ID,
		TokenHash:  auth.HashToken(refreshToken),
		DeviceInfo: truncate(client.UserAgent, 255),
		IPAddress:  client.IPAddress,
		ExpiresAt:  now.Add(s.refreshTTL),
		LastUsedAt: &now,
	}
	if err := s.refreshTokenRepo.Create(db, record); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		User:         dto.NewUserResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(auth.AccessTokenTTL().Seconds()),
	}, nil
}

// checkUserStatus lifts expired temporary bans.
func (s *AuthServiceImpl) checkUserStatus(db *gorm.DB, user *models.User) error {
	switch user.Status {
	case models.UserStatusActive:
		return nil
	case models.UserStatusBanned:
		if user.IsBanned(s.now()) {
			return apperrors.ErrAccountBanned
		}
		err := s.userRepo.UpdateFields(db, user.ID, map[string]interface{}{
			"status":       models.UserStatusActive,
			"ban_reason":   "",
			"banned_until": nil,
		})
		if err != nil {
			return apperrors.InternalError(err)
		}
		user.Status = models.UserStatusActive
		user.BannedUntil = nil
		return nil
	default:
		return apperrors.ErrAccountInactive
	}
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// UniqueUsername derives a free username from the email local part: "j.doe+x@..." -> "jdoex", "jdoex1", ...
func UniqueUsername(db *gorm.DB, userRepo repositories.UserRepository, email string) (string, error) {
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}
	base := strings.ToLower(nonAlnum.ReplaceAllString(local, ""))
	if len(base) < 3 {
		base += "user"
	}
	base = truncate(base, 24)

	candidate := base
	for i := 1; ; i++ {
		taken, err := userRepo.UsernameExists(db, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func buildUserResponseWithCounts(
	db *gorm.DB,
	user *models.User,
	followRepo repositories.FollowRepository,
	serviceRepo repositories.ServiceRepository,
) (*dto.UserResponse, error) {
	resp := dto.NewUserResponse(user)

	services, err := serviceRepo.CountByUser(db, user.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	followers, err := followRepo.CountFollowers(db, user.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	following, err := followRepo.CountFollowing(db, user.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp.Counts = &dto.UserCounts{
		Services:  services,
		Followers: followers,
		Following: following,
		Reviews:   int64(user.ReviewCount),
	}
	return resp, nil
}

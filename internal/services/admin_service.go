package services

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"simbi_backend/internal/logger"
	"simbi_backend/internal/models"
	"simbi_backend/internal/repositories"
	"simbi_backend/internal/services/dto"
	"simbi_backend/pkg/apperrors"
)

// Audit actions.
const (
	AuditUpdateRole      = "update_role"
	AuditBanUser         = "ban_user"
	AuditUnbanUser       = "unban_user"
	AuditResolveFlag     = "resolve_flag"
	AuditModerateService = "moderate_service"
)

const (
	FlagActionDismissed = "dismissed"
	FlagActionRemoved   = "removed"
	FlagActionWarned    = "warned"

	auditActivityLimit = 100
)

type AdminService interface {
	ListUsers(db *gorm.DB, query *dto.AdminUserQuery, page, pageSize int) (*dto.AdminUserListResponse, error)
	GetUser(db *gorm.DB, userID string) (*dto.UserResponse, error)
	UpdateUserRole(db *gorm.DB, adminID, userID string, req *dto.UpdateUserRoleRequest) (*dto.UserResponse, error)
	BanUser(db *gorm.DB, adminID, userID string, req *dto.BanUserRequest) (*dto.UserResponse, error)
	UnbanUser(db *gorm.DB, adminID, userID string) (*dto.UserResponse, error)
	ListFlags(db *gorm.DB, includeResolved bool, page, pageSize int) (*dto.FlagListResponse, error)
	ResolveFlag(db *gorm.DB, adminID, flagID string, req *dto.ResolveFlagRequest) (*models.Flag, error)
	ModerateService(db *gorm.DB, adminID, serviceID string, req *dto.ModerateContentRequest) (*dto.ServiceResponse, error)
	GetStats(db *gorm.DB) (*dto.SystemStatsResponse, error)
	GetActivity(db *gorm.DB) ([]models.AuditLog, error)
}

type AdminServiceImpl struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	serviceRepo      repositories.ServiceRepository
	flagRepo         repositories.FlagRepository
	talkRepo         repositories.TalkRepository
	auditRepo        repositories.AuditLogRepository
	realtime         RealtimePublisher
	now              func() time.Time
}

func NewAdminService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	serviceRepo repositories.ServiceRepository,
	flagRepo repositories.FlagRepository,
	talkRepo repositories.TalkRepository,
	auditRepo repositories.AuditLogRepository,
	realtime RealtimePublisher,
) AdminService {
	if realtime == nil {
		realtime = NopPublisher{}
	}
	return &AdminServiceImpl{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		serviceRepo:      serviceRepo,
		flagRepo:         flagRepo,
		talkRepo:         talkRepo,
		auditRepo:        auditRepo,
		realtime:         realtime,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *AdminServiceImpl) ListUsers(db *gorm.DB, query *dto.AdminUserQuery, page, pageSize int) (*dto.AdminUserListResponse, error) {
	page, pageSize = normalizePage(page, pageSize, 20, 100)
	users, total, err := s.userRepo.List(db, repositories.UserCriteria{
		Role:     models.UserRole(query.Role),
		Query:    strings.TrimSpace(query.Query),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]*dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	return &dto.AdminUserListResponse{Users: out, Pagination: dto.NewPagination(total, page, pageSize)}, nil
}

func (s *AdminServiceImpl) GetUser(db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return dto.NewUserResponse(user), nil
}

func (s *AdminServiceImpl) UpdateUserRole(db *gorm.DB, adminID, userID string, req *dto.UpdateUserRoleRequest) (*dto.UserResponse, error) {
	if adminID == userID {
		return nil, apperrors.ErrCannotModifySelf
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByID(tx, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	oldRole := user.Role
	user.Role = models.UserRole(req.Role)

	if err := s.userRepo.UpdateFields(tx, userID, map[string]interface{}{"role": user.Role}); err != nil {
		return nil, mapRepoError(err)
	}
	if err := s.audit(tx, adminID, AuditUpdateRole, "user", userID,
		map[string]interface{}{"role": oldRole}, map[string]interface{}{"role": user.Role}); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctxOf(db), "User role changed", "admin_id", adminID, "user_id", userID, "role", user.Role)
	return dto.NewUserResponse(user), nil
}

// BanUser also revokes every session of the user. Without a duration the ban is permanent.
func (s *AdminServiceImpl) BanUser(db *gorm.DB, adminID, userID string, req *dto.BanUserRequest) (*dto.UserResponse, error) {
	if adminID == userID {
		return nil, apperrors.ErrCannotModifySelf
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByID(tx, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	var until *time.Time
	if req.Duration != nil {
		t := s.now().AddDate(0, 0, *req.Duration)
		until = &t
	}

	oldStatus := user.Status
	user.Status = models.UserStatusBanned
	user.BanReason = req.Reason
	user.BannedUntil = until

	err = s.userRepo.UpdateFields(tx, userID, map[string]interface{}{
		"status":       models.UserStatusBanned,
		"ban_reason":   req.Reason,
		"banned_until": until,
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	if _, err := s.refreshTokenRepo.DeleteByUserID(tx, userID); err != nil {
		return nil, apperrors.InternalError(err)
	}

	newValue := map[string]interface{}{"status": user.Status, "reason": req.Reason}
	if until != nil {
		newValue["bannedUntil"] = until
	}
	if err := s.audit(tx, adminID, AuditBanUser, "user", userID,
		map[string]interface{}{"status": oldStatus}, newValue); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxWarn(ctxOf(db), "User banned", "admin_id", adminID, "user_id", userID)
	return dto.NewUserResponse(user), nil
}

func (s *AdminServiceImpl) UnbanUser(db *gorm.DB, adminID, userID string) (*dto.UserResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByID(tx, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if user.Status != models.UserStatusBanned {
		return nil, apperrors.ErrInvalidStatus("user", "User is not banned")
	}

	err = s.userRepo.UpdateFields(tx, userID, map[string]interface{}{
		"status":       models.UserStatusActive,
		"ban_reason":   "",
		"banned_until": nil,
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := s.audit(tx, adminID, AuditUnbanUser, "user", userID,
		map[string]interface{}{"status": user.Status}, map[string]interface{}{"status": models.UserStatusActive}); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	user.Status = models.UserStatusActive
	user.BanReason = ""
	user.BannedUntil = nil
	return dto.NewUserResponse(user), nil
}

func (s *AdminServiceImpl) ListFlags(db *gorm.DB, includeResolved bool, page, pageSize int) (*dto.FlagListResponse, error) {
	page, pageSize = normalizePage(page, pageSize, 20, 100)
	flags, total, err := s.flagRepo.List(db, includeResolved, page, pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if flags == nil {
		flags = []models.Flag{}
	}
	return &dto.FlagListResponse{Flags: flags, Pagination: dto.NewPagination(total, page, pageSize)}, nil
}

// ResolveFlag closes the flag. The "removed" action also deletes the flagged service.
func (s *AdminServiceImpl) ResolveFlag(db *gorm.DB, adminID, flagID string, req *dto.ResolveFlagRequest) (*models.Flag, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	flag, err := s.flagRepo.FindByID(tx, flagID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if flag.Resolved {
		return nil, apperrors.ErrInvalidStatus("flag", "Flag is already resolved")
	}

	now := s.now()
	flag.Resolved = true
	flag.ResolvedBy = &adminID
	flag.ResolvedAt = &now
	flag.Action = req.Action
	flag.Resolution = req.Notes

	if err := s.flagRepo.Update(tx, flag); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if req.Action == FlagActionRemoved {
		err := s.serviceRepo.UpdateFields(tx, flag.ServiceID, map[string]interface{}{"state": models.ServiceStateDeleted})
		if err != nil && !apperrors.Is(err, repositories.ErrServiceNotFound) {
			return nil, apperrors.InternalError(err)
		}
	}

	if err := s.audit(tx, adminID, AuditResolveFlag, "flag", flagID,
		map[string]interface{}{"resolved": false},
		map[string]interface{}{"resolved": true, "action": req.Action, "notes": req.Notes}); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return flag, nil
}

func (s *AdminServiceImpl) ModerateService(db *gorm.DB, adminID, serviceID string, req *dto.ModerateContentRequest) (*dto.ServiceResponse, error) {
	var state models.ServiceState
	switch req.Action {
	case "hide":
		state = models.ServiceStateHidden
	case "delete":
		state = models.ServiceStateDeleted
	case "restore":
		state = models.ServiceStateActive
	default:
		return nil, apperrors.NewBadRequestError("Unknown moderation action")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	service, err := s.serviceRepo.FindByIDAny(tx, serviceID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	oldState := service.State
	service.State = state

	if err := s.serviceRepo.UpdateFields(tx, serviceID, map[string]interface{}{"state": state}); err != nil {
		return nil, mapRepoError(err)
	}
	if err := s.audit(tx, adminID, AuditModerateService, "service", serviceID,
		map[string]interface{}{"state": oldState},
		map[string]interface{}{"state": state, "reason": req.Reason}); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctxOf(db), "Service moderated", "admin_id", adminID, "service_id", serviceID, "action", req.Action)
	return dto.NewServiceResponse(service), nil
}

func (s *AdminServiceImpl) GetStats(db *gorm.DB) (*dto.SystemStatsResponse, error) {
	stats := &dto.SystemStatsResponse{}
	var err error

	if stats.Users.Total, err = s.userRepo.Count(db); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.Users.Active, err = s.userRepo.CountByStatus(db, models.UserStatusActive); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.Users.Banned, err = s.userRepo.CountByStatus(db, models.UserStatusBanned); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.Services.Total, err = s.serviceRepo.Count(db); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.Services.Active, err = s.serviceRepo.CountByState(db, models.ServiceStateActive); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.Talks, err = s.talkRepo.Count(db); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.Messages, err = s.talkRepo.CountMessages(db); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.OpenFlags, err = s.flagRepo.CountOpen(db); err != nil {
		return nil, apperrors.InternalError(err)
	}
	stats.OnlineUsers = len(s.realtime.GetActiveUsers())
	return stats, nil
}

func (s *AdminServiceImpl) GetActivity(db *gorm.DB) ([]models.AuditLog, error) {
	entries, err := s.auditRepo.FindRecent(db, auditActivityLimit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if entries == nil {
		entries = []models.AuditLog{}
	}
	return entries, nil
}

func (s *AdminServiceImpl) audit(db *gorm.DB, adminID, action, entityType, entityID string, oldValue, newValue interface{}) error {
	entry := &models.AuditLog{
		AdminID:    adminID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValue:   toJSON(oldValue),
		NewValue:   toJSON(newValue),
	}
	if err := s.auditRepo.Create(db, entry); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func toJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

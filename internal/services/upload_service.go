package services

import (
	"bytes"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"simbi_backend/internal/imageprocessor"
	"simbi_backend/internal/logger"
	"simbi_backend/internal/models"
	"simbi_backend/internal/repositories"
	"simbi_backend/internal/services/dto"
	"simbi_backend/internal/storage"
	"simbi_backend/pkg/apperrors"
)

const (
	UploadUsageImage  = "image"
	UploadUsageAvatar = "avatar"
)

// UploadInput is a file received from a multipart form.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type UploadService interface {
	UploadImage(db *gorm.DB, userID string, file UploadInput) (*dto.UploadResponse, error)
	UploadAvatar(db *gorm.DB, userID string, file UploadInput) (*dto.UploadResponse, error)
	GetUserUploads(db *gorm.DB, userID string) ([]models.Upload, error)
	DeleteUpload(db *gorm.DB, userID, uploadID string) error
	MaxSize() int64
}

type UploadServiceImpl struct {
	storage      storage.Storage
	processor    *imageprocessor.Processor
	uploadRepo   repositories.UploadRepository
	userRepo     repositories.UserRepository
	maxSize      int64
	allowedTypes map[string]bool
}

func NewUploadService(
	store storage.Storage,
	processor *imageprocessor.Processor,
	uploadRepo repositories.UploadRepository,
	userRepo repositories.UserRepository,
	maxSize int64,
	allowedTypes []string,
) UploadService {
	if maxSize <= 0 {
		maxSize = 10 << 20
	}
	if len(allowedTypes) == 0 {
		allowedTypes = []string{"image/jpeg", "image/png", "image/webp"}
	}
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return &UploadServiceImpl{
		storage:      store,
		processor:    processor,
		uploadRepo:   uploadRepo,
		userRepo:     userRepo,
		maxSize:      maxSize,
		allowedTypes: allowed,
	}
}

func (s *UploadServiceImpl) MaxSize() int64 {
	return s.maxSize
}

// UploadImage fits the image inside 1200x1200 and stores it under images/<userId>/.
func (s *UploadServiceImpl) UploadImage(db *gorm.DB, userID string, file UploadInput) (*dto.UploadResponse, error) {
	data, err := s.read(file)
	if err != nil {
		return nil, err
	}
	result, err := s.processor.Fit(bytes.NewReader(data), imageprocessor.MaxImageSide)
	if err != nil {
		return nil, apperrors.ErrInvalidFileType.WithError(err)
	}
	key := path.Join("images", userID, uuid.NewString()+result.Ext)
	return s.store(db, userID, UploadUsageImage, key, file.Filename, result)
}

// UploadAvatar crops to a 400x400 square and sets it as the user's avatar.
func (s *UploadServiceImpl) UploadAvatar(db *gorm.DB, userID string, file UploadInput) (*dto.UploadResponse, error) {
	data, err := s.read(file)
	if err != nil {
		return nil, err
	}
	result, err := s.processor.Cover(bytes.NewReader(data), imageprocessor.AvatarSide)
	if err != nil {
		return nil, apperrors.ErrInvalidFileType.WithError(err)
	}
	key := path.Join("avatars", userID, uuid.NewString()+result.Ext)

	resp, err := s.store(db, userID, UploadUsageAvatar, key, file.Filename, result)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateFields(db, userID, map[string]interface{}{"avatar": resp.URL}); err != nil {
		return nil, mapRepoError(err)
	}
	return resp, nil
}

func (s *UploadServiceImpl) GetUserUploads(db *gorm.DB, userID string) ([]models.Upload, error) {
	uploads, err := s.uploadRepo.FindByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if uploads == nil {
		uploads = []models.Upload{}
	}
	return uploads, nil
}

// DeleteUpload removes the record first; a storage failure only leaves an orphaned object.
func (s *UploadServiceImpl) DeleteUpload(db *gorm.DB, userID, uploadID string) error {
	upload, err := s.uploadRepo.FindByID(db, uploadID)
	if err != nil {
		return mapRepoError(err)
	}
	if upload.UserID != userID {
		return apperrors.NewForbiddenError("You can only delete your own files")
	}
	if err := s.uploadRepo.Delete(db, uploadID); err != nil {
		return mapRepoError(err)
	}

	ctx := ctxOf(db)
	if err := s.storage.Delete(ctx, upload.Key); err != nil && !apperrors.Is(err, storage.ErrObjectNotFound) {
		logger.CtxWithError(ctx, "Failed to delete stored file", err, "key", upload.Key)
	}
	return nil
}

// read enforces the size limit and sniffs the real content type.
func (s *UploadServiceImpl) read(file UploadInput) ([]byte, error) {
	if file.Size > s.maxSize {
		return nil, apperrors.ErrFileTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(file.Reader, s.maxSize+1))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, apperrors.ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, apperrors.ErrInvalidFileType
	}

	sniffed := http.DetectContentType(data)
	if !s.allowedTypes[sniffed] {
		return nil, apperrors.ErrInvalidFileType.WithDetails(map[string]string{"contentType": sniffed})
	}
	return data, nil
}

func (s *UploadServiceImpl) store(db *gorm.DB, userID, usage, key, filename string, result *imageprocessor.Result) (*dto.UploadResponse, error) {
	ctx := ctxOf(db)
	if err := s.storage.Save(ctx, key, bytes.NewReader(result.Data), result.MimeType); err != nil {
		return nil, apperrors.InternalError(err)
	}

	record := &models.Upload{
		UserID:          userID,
		Usage:           usage,
		Key:             key,
		URL:             s.storage.URL(key),
		OriginalName:    filename,
		MimeType:        result.MimeType,
		Size:            int64(len(result.Data)),
		Width:           result.Width,
		Height:          result.Height,
		StorageProvider: s.storage.Provider(),
	}
	if err := s.uploadRepo.Create(db, record); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			logger.CtxWithError(ctx, "Failed to remove orphaned upload", delErr, "key", key)
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "File uploaded", "user_id", userID, "key", key, "size", record.Size)

	return &dto.UploadResponse{
		ID:     record.ID,
		URL:    record.URL,
		Key:    key,
		Size:   record.Size,
		Width:  record.Width,
		Height: record.Height,
	}, nil
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"simbi_backend/internal/middleware"
	"simbi_backend/internal/services"
	"simbi_backend/internal/services/dto"
	"simbi_backend/pkg/apperrors"
)

type UploadHandler struct {
	*BaseHandler
	uploadService services.UploadService
}

func NewUploadHandler(base *BaseHandler, uploadService services.UploadService) *UploadHandler {
	return &UploadHandler{
		BaseHandler:   base,
		uploadService: uploadService,
	}
}

func (h *UploadHandler) RegisterRoutes(r *gin.RouterGroup) {
	uploads := r.Group("/upload")
	uploads.Use(middleware.AuthMiddleware())
	{
		uploads.POST("/image", h.UploadImage)
		uploads.POST("/avatar", h.UploadAvatar)
		uploads.GET("/mine", h.GetMyUploads)
		uploads.DELETE("/:uploadId", h.DeleteUpload)
	}
}

// UploadImage godoc
// @Summary Upload an image
// @Description Resized to fit 1200x1200 and stored as JPEG.
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file"
// @Success 201 {object} dto.UploadResponse
// @Failure 400 {object} map[string]interface{} "Missing file or unsupported type"
// @Router /api/v1/upload/image [post]
func (h *UploadHandler) UploadImage(c *gin.Context) {
	h.upload(c, h.uploadService.UploadImage)
}

// UploadAvatar godoc
// @Summary Upload an avatar
// @Description Cropped to 400x400 and set as the caller's avatar.
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file"
// @Success 201 {object} dto.UploadResponse
// @Router /api/v1/upload/avatar [post]
func (h *UploadHandler) UploadAvatar(c *gin.Context) {
	h.upload(c, h.uploadService.UploadAvatar)
}

func (h *UploadHandler) upload(c *gin.Context, store func(*gorm.DB, string, services.UploadInput) (*dto.UploadResponse, error)) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	// Leave room for multipart framing on top of the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadService.MaxSize()+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("no file provided"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("failed to read file"))
		return
	}
	defer file.Close()

	response, err := store(h.GetDB(c), userID, services.UploadInput{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      file,
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *UploadHandler) GetMyUploads(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	uploads, err := h.uploadService.GetUserUploads(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"uploads": uploads})
}

func (h *UploadHandler) DeleteUpload(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.uploadService.DeleteUpload(h.GetDB(c), userID, c.Param("uploadId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

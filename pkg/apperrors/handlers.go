package apperrors

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the body of every failed request. Message duplicates
// Error.Message so simple clients can read it without unwrapping.
type ErrorResponse struct {
	Error   *AppError `json:"error"`
	Message string    `json:"message"`
}

type GinErrorHandler struct {
	Debug bool
}

func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}
	if appErr.HTTPCode >= 500 && !h.Debug {
		appErr = appErr.WithDetails(nil)
	}

	if appErr.HTTPCode >= 500 {
		log.Error().Err(appErr.Unwrap()).Str("path", c.Request.URL.Path).Msg("server error")
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{Error: appErr, Message: appErr.Message})
}

// HandleError writes err as JSON. Debug mode follows gin's mode.
func HandleError(c *gin.Context, err error) {
	handler := &GinErrorHandler{Debug: gin.Mode() != gin.ReleaseMode}
	handler.HandleGinError(c, err)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

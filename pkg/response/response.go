package response

import (
	"net/http"
	"strconv"

	"anoa.com/catalog/pkg/apperror"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextUserID    = "user_id"
	ContextUsername  = "username"
	ContextRole      = "role"
	ContextRequestID = "request_id"
	ContextLogger    = "logger"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (int64, error) {
	raw, exists := c.Get(ContextUserID)
	if !exists {
		return 0, apperror.ErrUnauthorized
	}

	str, ok := raw.(string)
	if !ok {
		return 0, apperror.ErrUnauthorized
	}

	id, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0, apperror.ErrUnauthorized
	}

	return id, nil
}

// Logger returns the request scoped logger set by the logging middleware.
func Logger(c *gin.Context) *zap.Logger {
	if raw, ok := c.Get(ContextLogger); ok {
		if l, ok := raw.(*zap.Logger); ok {
			return l
		}
	}
	return zap.L()
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		Logger(c).Error("internal error", zap.Error(err))
		c.JSON(code, gin.H{"error": "an error occurred while processing your request"})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}

// ParseID reads a positive integer path parameter.
func ParseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest("invalid %s", name)
	}
	return id, nil
}

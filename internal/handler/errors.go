package handler

import (
	"errors"

	"workflow-go/internal/middleware"
	"workflow-go/internal/service"
	"workflow-go/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var errorResponses = []struct {
	err     error
	respond func(*gin.Context, string)
	message string
}{
	{service.ErrDuplicateUser, utils.Conflict, "User already exists"},
	{service.ErrInvalidCredentials, utils.Unauthorized, "Invalid credentials"},
	{service.ErrMissingToken, utils.Unauthorized, "Access token required"},
	{service.ErrInvalidToken, utils.Forbidden, "Invalid token"},
	{service.ErrUserNotFound, utils.NotFound, "User not found"},
	{service.ErrInvalidFormat, utils.BadRequest, "Invalid CSV file"},
	{service.ErrNotFound, utils.NotFound, "Not found"},
	{service.ErrTooManyStreams, utils.TooManyRequests, "Too many open streams"},
}

// respondError maps a service error to its HTTP response.
// Unknown errors are logged and answered with a generic 500.
func respondError(c *gin.Context, logger logrus.FieldLogger, err error) {
	for _, e := range errorResponses {
		if errors.Is(err, e.err) {
			e.respond(c, e.message)
			return
		}
	}

	logger.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("request failed")
	_ = c.Error(err)
	utils.InternalError(c, "Internal server error")
}

// currentUser returns the authenticated user ID or answers 401.
func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok || userID == "" {
		utils.Unauthorized(c, "Access token required")
		return "", false
	}
	return userID, true
}

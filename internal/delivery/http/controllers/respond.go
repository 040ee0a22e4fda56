package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"CourseForge/internal/app_errors"
	"CourseForge/pkg/logger"
)

// errorEnvelope is the wire shape of every failure response.
type errorEnvelope struct {
	Error   bool                `json:"error"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func statusForKind(kind app_errors.Kind) int {
	switch kind {
	case app_errors.KindAuthentication:
		return http.StatusUnauthorized
	case app_errors.KindAuthorization:
		return http.StatusForbidden
	case app_errors.KindNotFound:
		return http.StatusNotFound
	case app_errors.KindValidation, app_errors.KindConflict, app_errors.KindInvalidState:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a domain error onto the envelope
// {error: true, message, errors: {field: [messages]}}.
func respondError(c *gin.Context, log logger.Log, err error) {
	var appErr *app_errors.Error
	if !errors.As(err, &appErr) {
		log.ErrorErr("unhandled error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, errorEnvelope{
			Error:   true,
			Message: "internal server error",
			Errors:  map[string][]string{"detail": {"internal server error"}},
		})
		return
	}

	fields := appErr.Fields
	if fields == nil {
		fields = map[string][]string{"detail": {appErr.Message}}
	}
	c.JSON(statusForKind(appErr.Kind), errorEnvelope{
		Error:   true,
		Message: appErr.Message,
		Errors:  fields,
	})
}

func abortWithError(c *gin.Context, log logger.Log, err error) {
	respondError(c, log, err)
	c.Abort()
}

func respondBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorEnvelope{
		Error:   true,
		Message: "Validation error",
		Errors:  map[string][]string{"detail": {err.Error()}},
	})
}

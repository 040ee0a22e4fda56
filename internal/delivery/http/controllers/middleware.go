package controllers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"CourseForge/pkg/logger"
)

const principalCtx = "principal"

type AuthService interface {
	ParseToken(ctx context.Context, token string) (*jwt.Token, error)
	IsAccessToken(ctx context.Context, token *jwt.Token) bool
	User(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type AuthMiddlewareProvider struct {
	log     logger.Log
	service AuthService
}

func NewAuthMiddlewareProvider(log logger.Log, s AuthService) *AuthMiddlewareProvider {
	return &AuthMiddlewareProvider{
		log:     log,
		service: s,
	}
}

// AuthMiddleware resolves the bearer token to a principal and stores it in
// the request context. All failures here are 401s, distinct from the 403s
// the role and ownership gates produce.
func (h *AuthMiddlewareProvider) AuthMiddleware(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	var token string
	if parts := strings.Split(authHeader, "Bearer "); len(parts) == 2 {
		token = parts[1]
	}
	if token == "" {
		abortWithError(c, h.log, app_errors.Authentication("authentication required"))
		return
	}

	parsedToken, err := h.service.ParseToken(c.Request.Context(), token)
	if err != nil {
		h.log.Info("failed to parse token", logger.Err(err))
		if app_errors.IsKind(err, app_errors.KindAuthentication) {
			abortWithError(c, h.log, err)
			return
		}
		abortWithError(c, h.log, app_errors.Authentication("invalid token"))
		return
	}
	if !h.service.IsAccessToken(c.Request.Context(), parsedToken) {
		abortWithError(c, h.log, app_errors.Authentication("not an access token"))
		return
	}

	subject, err := parsedToken.Claims.GetSubject()
	if err != nil {
		abortWithError(c, h.log, app_errors.Authentication("invalid token claims"))
		return
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		abortWithError(c, h.log, app_errors.Authentication("invalid token subject"))
		return
	}
	user, err := h.service.User(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, h.log, app_errors.Authentication("unknown principal"))
		return
	}

	c.Set(principalCtx, user)
	c.Next()
}

// RequireRole gates a route group on the principal's role.
func RequireRole(log logger.Log, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := Principal(c)
		if principal == nil {
			abortWithError(c, log, app_errors.Authentication("authentication required"))
			return
		}
		if principal.Role != role {
			abortWithError(c, log, app_errors.Authorization(fmt.Sprintf("%s role required", strings.ToLower(string(role)))))
			return
		}
		c.Next()
	}
}

// Principal returns the authenticated user for the request, nil when the
// auth middleware did not run or rejected it.
func Principal(c *gin.Context) *models.User {
	raw, exists := c.Get(principalCtx)
	if !exists {
		return nil
	}
	user, ok := raw.(*models.User)
	if !ok {
		return nil
	}
	return user
}

func LoggingMiddleware(logger logger.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		path := c.Request.URL.Path
		rawQuery := c.Request.URL.RawQuery
		if rawQuery != "" {
			path = fmt.Sprintf("%s?%s", path, rawQuery)
		}
		status := c.Writer.Status()

		msg := fmt.Sprintf("%s %s", method, path)

		logger.Info(msg,
			"status", status,
			"latency", latency,
			"client_ip", clientIP,
		)

		for _, ginErr := range c.Errors {
			logger.ErrorErr("HTTP request error", ginErr.Err,
				"status", status,
				"method", method,
				"path", path,
			)
		}
	}
}

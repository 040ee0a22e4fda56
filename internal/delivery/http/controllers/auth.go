package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"CourseForge/internal/models"
	"CourseForge/internal/service/auth"
	"CourseForge/pkg/logger"
)

type AuthUseCase interface {
	Register(ctx context.Context, reg auth.Registration) (*models.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *models.User, err error)
	RefreshTokens(ctx context.Context, token string) (*models.TokenPair, error)
}

type AuthController struct {
	log     logger.Log
	service AuthUseCase
}

func NewAuthController(log logger.Log, s AuthUseCase) *AuthController {
	return &AuthController{
		log:     log,
		service: s,
	}
}

type registerRequest struct {
	Email           string `json:"email" binding:"required,email"`
	FullName        string `json:"full_name" binding:"required"`
	Role            string `json:"role" binding:"required"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
}

func (h *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), auth.Registration{
		Email:           req.Email,
		FullName:        req.FullName,
		Role:            models.Role(req.Role),
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("user registered", "user_id", user.ID, "role", user.Role)
	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// loginResponse mirrors what clients already consume: the token pair plus
// enough profile to render the session without a follow-up request.
type loginResponse struct {
	Access      string   `json:"access"`
	Refresh     string   `json:"refresh"`
	Authorities []string `json:"authorities"`
	Email       string   `json:"email"`
	FullName    string   `json:"full_name"`
	Role        string   `json:"role"`
}

func (h *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	access, refresh, user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Access:      access,
		Refresh:     refresh,
		Authorities: []string{string(user.Role)},
		Email:       user.Email,
		FullName:    user.FullName,
		Role:        string(user.Role),
	})
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (h *AuthController) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	pair, err := h.service.RefreshTokens(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access":  pair.AccessToken.Raw,
		"refresh": pair.RefreshToken.Raw,
	})
}

func (h *AuthController) Me(c *gin.Context) {
	principal := Principal(c)
	if principal == nil {
		respondError(c, h.log, errNoPrincipal())
		return
	}
	c.JSON(http.StatusOK, principal)
}

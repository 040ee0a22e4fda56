package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"CourseForge/pkg/logger"
)

const minPasswordLength = 8

type userRepo interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type tokenRepo interface {
	Create(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error)
	ByPrimaryKey(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error)
	DeleteUserTokens(ctx context.Context, userID uuid.UUID) error
}

type AuthService struct {
	log        logger.Log
	jwtManager *JWTManager
	userRepo   userRepo
	tokenRepo  tokenRepo
}

func NewAuthService(l logger.Log, manager *JWTManager, uRepo userRepo, tRepo tokenRepo) *AuthService {
	return &AuthService{
		log:        l,
		jwtManager: manager,
		userRepo:   uRepo,
		tokenRepo:  tRepo,
	}
}

type Registration struct {
	Email           string
	FullName        string
	Role            models.Role
	Password        string
	PasswordConfirm string
}

func (u *AuthService) Register(ctx context.Context, reg Registration) (*models.User, error) {
	if !reg.Role.Valid() {
		return nil, app_errors.Validation("role", "role must be Student or Instructor")
	}
	if len(reg.Password) < minPasswordLength {
		return nil, app_errors.Validation("password", "password must be at least 8 characters")
	}
	if reg.Password != reg.PasswordConfirm {
		return nil, app_errors.Validation("password_confirm", "passwords don't match")
	}

	hashed, err := hashPassword(reg.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:    reg.Email,
		FullName: reg.FullName,
		Role:     reg.Role,
		Password: hashed,
	}
	return u.userRepo.CreateUser(ctx, user)
}

func (u *AuthService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *models.User, err error) {
	user, err = u.userRepo.UserByEmail(ctx, email)
	if err != nil {
		if app_errors.IsKind(err, app_errors.KindNotFound) {
			return "", "", nil, app_errors.Authentication("invalid credentials")
		}
		return "", "", nil, err
	}

	if !checkPasswordHash(password, user.Password) {
		return "", "", nil, app_errors.Authentication("invalid credentials")
	}

	tokenPair, err := u.jwtManager.GenerateTokenPair(user)
	if err != nil {
		return "", "", nil, err
	}

	if err = u.tokenRepo.DeleteUserTokens(ctx, user.ID); err != nil {
		return "", "", nil, err
	}
	if _, err = u.tokenRepo.Create(ctx, user.ID, tokenPair.RefreshToken); err != nil {
		return "", "", nil, err
	}

	return tokenPair.AccessToken.Raw, tokenPair.RefreshToken.Raw, user, nil
}

func (u *AuthService) RefreshTokens(ctx context.Context, token string) (*models.TokenPair, error) {
	curToken, err := u.jwtManager.Parse(token)
	if err != nil {
		return nil, err
	}
	if !u.jwtManager.TokenType(curToken, RefreshTokenType) {
		return nil, app_errors.Authentication("not a refresh token")
	}
	userIDStr, err := curToken.Claims.GetSubject()
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, err
	}
	tokenRecord, err := u.tokenRepo.ByPrimaryKey(ctx, userID, curToken)
	if err != nil {
		return nil, err
	}
	if tokenRecord.ExpiresAt.Before(time.Now()) {
		return nil, app_errors.Authentication("token expired")
	}
	user, err := u.userRepo.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	tokenPair, err := u.jwtManager.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}
	if err := u.tokenRepo.DeleteUserTokens(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := u.tokenRepo.Create(ctx, user.ID, tokenPair.RefreshToken); err != nil {
		return nil, err
	}
	return tokenPair, nil
}

func (u *AuthService) ParseToken(ctx context.Context, token string) (*jwt.Token, error) {
	return u.jwtManager.Parse(token)
}

func (u *AuthService) IsAccessToken(ctx context.Context, token *jwt.Token) bool {
	return u.jwtManager.TokenType(token, AccessTokenType)
}

func (u *AuthService) AccessClaims(ctx context.Context, token string) (*AccessTokenClaims, error) {
	return u.jwtManager.AccessClaims(token)
}

func (u *AuthService) User(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return u.userRepo.UserByID(ctx, id)
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

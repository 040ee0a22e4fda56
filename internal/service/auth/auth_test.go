package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"CourseForge/pkg/logger"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user models.User) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == user.Email {
			return nil, app_errors.Conflict("email", "user with this email already exists")
		}
	}
	user.ID = uuid.New()
	f.users[user.ID] = &user
	copied := user
	return &copied, nil
}

func (f *fakeUserRepo) UserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, app_errors.NotFound("user not found")
}

func (f *fakeUserRepo) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, app_errors.NotFound("user not found")
	}
	copied := *u
	return &copied, nil
}

type fakeTokenRepo struct {
	tokens map[uuid.UUID]string
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[uuid.UUID]string)}
}

func (f *fakeTokenRepo) Create(_ context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error) {
	f.tokens[userID] = token.Raw
	return &models.RefreshToken{
		UserID:      userID,
		HashedToken: token.Raw,
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeTokenRepo) ByPrimaryKey(_ context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error) {
	stored, ok := f.tokens[userID]
	if !ok || stored != token.Raw {
		return nil, app_errors.Authentication("refresh token not recognized")
	}
	return &models.RefreshToken{
		UserID:      userID,
		HashedToken: stored,
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeTokenRepo) DeleteUserTokens(_ context.Context, userID uuid.UUID) error {
	delete(f.tokens, userID)
	return nil
}

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()
	manager := NewJWTManager("test-secret", "courseforge", time.Minute, time.Hour)
	return NewAuthService(logger.New("local"), manager, newFakeUserRepo(), newFakeTokenRepo())
}

func validRegistration() Registration {
	return Registration{
		Email:           "ada@example.com",
		FullName:        "Ada Lovelace",
		Role:            models.RoleStudent,
		Password:        "correct-horse",
		PasswordConfirm: "correct-horse",
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuth(t)

	tests := []struct {
		name   string
		mutate func(*Registration)
		field  string
	}{
		{name: "unknown role", mutate: func(r *Registration) { r.Role = "Admin" }, field: "role"},
		{name: "short password", mutate: func(r *Registration) { r.Password = "short"; r.PasswordConfirm = "short" }, field: "password"},
		{name: "mismatch", mutate: func(r *Registration) { r.PasswordConfirm = "something-else" }, field: "password_confirm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := validRegistration()
			tt.mutate(&reg)
			_, err := svc.Register(context.Background(), reg)
			require.Error(t, err)
			assert.True(t, app_errors.IsKind(err, app_errors.KindValidation))
			var appErr *app_errors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	svc := newTestAuth(t)

	user, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.NotEmpty(t, user.Password)
	assert.NotEqual(t, "correct-horse", user.Password)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuth(t)

	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validRegistration())
	require.Error(t, err)
	assert.True(t, app_errors.IsKind(err, app_errors.KindConflict))
}

func TestLoginRoundtrip(t *testing.T) {
	svc := newTestAuth(t)

	registered, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	access, refresh, user, err := svc.Login(context.Background(), "ada@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := svc.AccessClaims(context.Background(), access)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, "ada@example.com", claims.Email)

	parsed, err := svc.ParseToken(context.Background(), access)
	require.NoError(t, err)
	assert.True(t, svc.IsAccessToken(context.Background(), parsed))

	parsedRefresh, err := svc.ParseToken(context.Background(), refresh)
	require.NoError(t, err)
	assert.False(t, svc.IsAccessToken(context.Background(), parsedRefresh))
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc := newTestAuth(t)

	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	// Unknown email and wrong password report the same failure.
	_, _, _, err = svc.Login(context.Background(), "nobody@example.com", "correct-horse")
	require.Error(t, err)
	assert.True(t, app_errors.IsKind(err, app_errors.KindAuthentication))
	assert.EqualError(t, err, "invalid credentials")

	_, _, _, err = svc.Login(context.Background(), "ada@example.com", "wrong-password")
	require.Error(t, err)
	assert.True(t, app_errors.IsKind(err, app_errors.KindAuthentication))
	assert.EqualError(t, err, "invalid credentials")
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc := newTestAuth(t)

	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	_, refresh, _, err := svc.Login(context.Background(), "ada@example.com", "correct-horse")
	require.NoError(t, err)

	pair, err := svc.RefreshTokens(context.Background(), refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken.Raw)
	assert.NotEmpty(t, pair.RefreshToken.Raw)

	// The rotated pair is usable in place of the old one.
	_, err = svc.RefreshTokens(context.Background(), pair.RefreshToken.Raw)
	require.NoError(t, err)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc := newTestAuth(t)

	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	access, _, _, err := svc.Login(context.Background(), "ada@example.com", "correct-horse")
	require.NoError(t, err)

	_, err = svc.RefreshTokens(context.Background(), access)
	require.Error(t, err)
	assert.True(t, app_errors.IsKind(err, app_errors.KindAuthentication))
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/config"
	"github.com/qs3c/stockopt_go_server/internal/model"
	"github.com/qs3c/stockopt_go_server/internal/model/dto"
	"github.com/qs3c/stockopt_go_server/internal/pkg/jwt"
	"github.com/qs3c/stockopt_go_server/internal/repository"
	"github.com/qs3c/stockopt_go_server/internal/testutil"
)

func setupAuthService(t *testing.T) (*AuthService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	userRepo := repository.NewUserRepository(db)

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:      "test-secret-key-for-testing",
			ExpireHours: 24,
		},
	}

	service := NewAuthService(userRepo, nil, cfg)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return service, db, cleanup
}

func TestAuthService_Register_FirstUserBecomesAdmin(t *testing.T) {
	service, _, cleanup := setupAuthService(t)
	defer cleanup()

	resp, err := service.Register(&dto.RegisterRequest{
		Username: "firstuser",
		Email:    "first@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.UserID)
	assert.Equal(t, "admin", resp.Role)

	resp, err = service.Register(&dto.RegisterRequest{
		Username: "seconduser",
		Email:    "second@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "staff", resp.Role)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	service, _, cleanup := setupAuthService(t)
	defer cleanup()

	_, err := service.Register(&dto.RegisterRequest{
		Username: "duplicate",
		Email:    "one@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = service.Register(&dto.RegisterRequest{
		Username: "duplicate",
		Email:    "two@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	service, _, cleanup := setupAuthService(t)
	defer cleanup()

	_, err := service.Register(&dto.RegisterRequest{
		Username: "user1",
		Email:    "same@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = service.Register(&dto.RegisterRequest{
		Username: "user2",
		Email:    "same@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAuthService_Login_Success(t *testing.T) {
	service, _, cleanup := setupAuthService(t)
	defer cleanup()

	resp, err := service.Register(&dto.RegisterRequest{
		Username: "loginuser",
		Email:    "login@example.com",
		Password: "password123",
		FullName: "Login User",
	})
	require.NoError(t, err)

	loginResp, err := service.Login(&dto.LoginRequest{
		Username: "loginuser",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, loginResp.Token)
	assert.Equal(t, resp.UserID, loginResp.User.ID)
	assert.Equal(t, "loginuser", loginResp.User.Username)
	assert.Equal(t, "login@example.com", loginResp.User.Email)
	assert.Equal(t, "Login User", loginResp.User.FullName)

	// Token 应带着正确的用户 ID
	claims, err := jwt.ParseToken(loginResp.Token, "test-secret-key-for-testing")
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.UserID)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	service, _, cleanup := setupAuthService(t)
	defer cleanup()

	_, err := service.Register(&dto.RegisterRequest{
		Username: "wrongpw",
		Email:    "wrongpw@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = service.Login(&dto.LoginRequest{
		Username: "wrongpw",
		Password: "not-the-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	service, _, cleanup := setupAuthService(t)
	defer cleanup()

	_, err := service.Login(&dto.LoginRequest{
		Username: "nobody",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_DisabledAccount(t *testing.T) {
	service, db, cleanup := setupAuthService(t)
	defer cleanup()

	resp, err := service.Register(&dto.RegisterRequest{
		Username: "disabled",
		Email:    "disabled@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	err = db.Model(&model.User{}).Where("id = ?", resp.UserID).
		Update("is_active", false).Error
	require.NoError(t, err)

	_, err = service.Login(&dto.LoginRequest{
		Username: "disabled",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestAuthService_GetUserByID(t *testing.T) {
	service, _, cleanup := setupAuthService(t)
	defer cleanup()

	resp, err := service.Register(&dto.RegisterRequest{
		Username: "getbyid",
		Email:    "getbyid@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	user, err := service.GetUserByID(resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, "getbyid", user.Username)

	_, err = service.GetUserByID(99999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

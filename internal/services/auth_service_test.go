package services

import (
	"testing"
	"time"

	"github.com/fredseo/showhub-backend/internal/config"
	"github.com/fredseo/showhub-backend/internal/dto"
	"github.com/fredseo/showhub-backend/internal/mailer"
	"github.com/fredseo/showhub-backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}))

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 7 * 24 * time.Hour,
		FrontendURL:      "http://localhost:3000",
	}
	return NewAuthService(db, cfg, mailer.Noop{}), db
}

func registerReq(email string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:                email,
		Username:             "newuser",
		Password:             "supersecret",
		PasswordConfirmation: "supersecret",
	}
}

func TestRegisterIssuesTokenPair(t *testing.T) {
	svc, db := testAuthService(t)

	resp, err := svc.Register(registerReq("a@example.com"))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "a@example.com", resp.User.Email)
	assert.Equal(t, models.RoleUser, resp.User.Role)
	assert.False(t, resp.User.IsVerified)

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "a@example.com").Error)
	assert.NotEqual(t, "supersecret", user.Password)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := testAuthService(t)

	_, err := svc.Register(registerReq("a@example.com"))
	require.NoError(t, err)

	_, err = svc.Register(registerReq("a@example.com"))
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterPasswordConfirmationMismatch(t *testing.T) {
	svc, _ := testAuthService(t)

	req := registerReq("a@example.com")
	req.PasswordConfirmation = "different1"
	_, err := svc.Register(req)
	require.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestLogin(t *testing.T) {
	svc, _ := testAuthService(t)

	_, err := svc.Register(registerReq("a@example.com"))
	require.NoError(t, err)

	resp, err := svc.Login(&dto.LoginRequest{Email: "a@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(&dto.LoginRequest{Email: "a@example.com", Password: "wrongpass1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(&dto.LoginRequest{Email: "nobody@example.com", Password: "supersecret"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsOAuthOnlyAccount(t *testing.T) {
	svc, _ := testAuthService(t)

	_, err := svc.GoogleSignIn("g@example.com", "Google User", "google-123")
	require.NoError(t, err)

	_, err = svc.Login(&dto.LoginRequest{Email: "g@example.com", Password: "anything1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _ := testAuthService(t)

	first, err := svc.Register(registerReq("a@example.com"))
	require.NoError(t, err)

	second, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: first.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The old token was revoked on use.
	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: first.RefreshToken})
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, _ := testAuthService(t)

	resp, err := svc.Register(registerReq("a@example.com"))
	require.NoError(t, err)

	require.NoError(t, svc.Logout(&dto.LogoutRequest{RefreshToken: resp.RefreshToken}))

	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestConfirmEmail(t *testing.T) {
	svc, db := testAuthService(t)

	resp, err := svc.Register(registerReq("a@example.com"))
	require.NoError(t, err)

	confirmed, err := svc.ConfirmEmail(resp.User.ID)
	require.NoError(t, err)
	assert.True(t, confirmed.IsVerified)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", resp.User.ID).Error)
	assert.True(t, user.IsVerified)
}

func TestGoogleSignInUpsertsAndLinks(t *testing.T) {
	svc, db := testAuthService(t)

	// New account from a Google profile.
	resp, err := svc.GoogleSignIn("g@example.com", "Google User", "google-123")
	require.NoError(t, err)
	assert.True(t, resp.User.IsVerified)

	// Existing local account gets linked on its first Google sign-in.
	_, err = svc.Register(registerReq("local@example.com"))
	require.NoError(t, err)

	_, err = svc.GoogleSignIn("local@example.com", "Local User", "google-456")
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "local@example.com").Error)
	assert.Equal(t, models.ProviderGoogle, user.AuthProvider)
	assert.True(t, user.IsVerified)
}

func TestUpdatePassword(t *testing.T) {
	svc, _ := testAuthService(t)

	resp, err := svc.Register(registerReq("a@example.com"))
	require.NoError(t, err)

	err = svc.UpdatePassword(resp.User.ID, &dto.UpdatePasswordRequest{
		CurrentPassword: "wrongpass1",
		NewPassword:     "anothersecret",
	})
	require.ErrorIs(t, err, ErrWrongPassword)

	err = svc.UpdatePassword(resp.User.ID, &dto.UpdatePasswordRequest{
		CurrentPassword: "supersecret",
		NewPassword:     "anothersecret",
	})
	require.NoError(t, err)

	_, err = svc.Login(&dto.LoginRequest{Email: "a@example.com", Password: "anothersecret"})
	require.NoError(t, err)
}

func TestUpdateRoleValidation(t *testing.T) {
	svc, _ := testAuthService(t)

	resp, err := svc.Register(registerReq("a@example.com"))
	require.NoError(t, err)

	_, err = svc.UpdateRole(resp.User.ID, "SUPERUSER")
	require.ErrorIs(t, err, ErrInvalidRole)

	updated, err := svc.UpdateRole(resp.User.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)
}

package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fredseo/showhub-backend/internal/config"
	"github.com/fredseo/showhub-backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &Service{}, &Widget{}, &UserService{}, &WidgetInstance{},
	))
	return db
}

func seedService(t *testing.T, db *gorm.DB, name string, requiresAuth bool) *Service {
	t.Helper()
	service := Service{
		ID:           uuid.New(),
		Name:         name,
		DisplayName:  name,
		Type:         ServiceTypePersonal,
		RequiresAuth: requiresAuth,
	}
	require.NoError(t, db.Create(&service).Error)
	return &service
}

func seedActivation(t *testing.T, db *gorm.DB, userID, serviceID uuid.UUID, access, refresh string, expiry *time.Time) *UserService {
	t.Helper()
	activation := UserService{
		ID:           uuid.New(),
		UserID:       userID,
		ServiceID:    serviceID,
		AccessToken:  access,
		RefreshToken: refresh,
		TokenExpiry:  expiry,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&activation).Error)
	return &activation
}

func TestAccessTokenReturnsStoredTokenWhileValid(t *testing.T) {
	db := testDB(t)
	service := seedService(t, db, ServiceEmail, true)
	userID := uuid.New()
	expiry := time.Now().Add(time.Hour)
	seedActivation(t, db, userID, service.ID, "stored-token", "refresh-token", &expiry)

	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer upstream.Close()

	provider := NewTokenProvider(db, &config.Config{GoogleTokenURL: upstream.URL})

	token, err := provider.AccessToken(context.Background(), userID, ServiceEmail)
	require.NoError(t, err)
	assert.Equal(t, "stored-token", token)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestAccessTokenRefreshesExpiredTokenOnce(t *testing.T) {
	db := testDB(t)
	service := seedService(t, db, ServiceEmail, true)
	userID := uuid.New()
	expiry := time.Now().Add(-time.Minute)
	seedActivation(t, db, userID, service.ID, "expired-token", "refresh-token", &expiry)

	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "refresh-token", r.Form.Get("refresh_token"))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "fresh-token",
			"expires_in":   3600,
		})
	}))
	defer upstream.Close()

	provider := NewTokenProvider(db, &config.Config{
		GoogleClientID:     "client",
		GoogleClientSecret: "secret",
		GoogleTokenURL:     upstream.URL,
	})

	token, err := provider.AccessToken(context.Background(), userID, ServiceEmail)
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	// The refreshed pair is persisted, so the next call hits the store only.
	token, err = provider.AccessToken(context.Background(), userID, ServiceEmail)
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	var activation UserService
	require.NoError(t, db.First(&activation, "user_id = ?", userID).Error)
	assert.Equal(t, "fresh-token", activation.AccessToken)
	require.NotNil(t, activation.TokenExpiry)
	assert.True(t, activation.TokenExpiry.After(time.Now()))
}

func TestAccessTokenExpiredWithoutRefreshToken(t *testing.T) {
	db := testDB(t)
	service := seedService(t, db, ServiceEmail, true)
	userID := uuid.New()
	expiry := time.Now().Add(-time.Minute)
	seedActivation(t, db, userID, service.ID, "expired-token", "", &expiry)

	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer upstream.Close()

	provider := NewTokenProvider(db, &config.Config{GoogleTokenURL: upstream.URL})

	_, err := provider.AccessToken(context.Background(), userID, ServiceEmail)
	require.ErrorIs(t, err, ErrReauthRequired)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestAccessTokenRefreshRejectionRequiresReauth(t *testing.T) {
	db := testDB(t)
	service := seedService(t, db, ServiceEmail, true)
	userID := uuid.New()
	expiry := time.Now().Add(-time.Minute)
	seedActivation(t, db, userID, service.ID, "expired-token", "revoked", &expiry)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer upstream.Close()

	provider := NewTokenProvider(db, &config.Config{GoogleTokenURL: upstream.URL})

	_, err := provider.AccessToken(context.Background(), userID, ServiceEmail)
	require.ErrorIs(t, err, ErrReauthRequired)
}

func TestAccessTokenNotConnected(t *testing.T) {
	db := testDB(t)
	seedService(t, db, ServiceEmail, true)

	provider := NewTokenProvider(db, &config.Config{})

	_, err := provider.AccessToken(context.Background(), uuid.New(), ServiceEmail)
	require.ErrorIs(t, err, ErrNotConnected)
}

package hub

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivateThenDoubleActivateConflicts(t *testing.T) {
	db := testDB(t)
	svc := NewActivationService(db)
	service := seedService(t, db, ServiceCalendar, true)
	userID := uuid.New()

	activation, err := svc.Activate(userID, service.ID)
	require.NoError(t, err)
	assert.True(t, activation.IsActive)

	_, err = svc.Activate(userID, service.ID)
	require.ErrorIs(t, err, ErrAlreadyActivated)
}

func TestActivateUnknownService(t *testing.T) {
	db := testDB(t)
	svc := NewActivationService(db)

	_, err := svc.Activate(uuid.New(), uuid.New())
	require.ErrorIs(t, err, ErrServiceNotFound)
}

func TestDeactivateUnactivatedService(t *testing.T) {
	db := testDB(t)
	svc := NewActivationService(db)
	service := seedService(t, db, ServiceCalendar, true)

	err := svc.Deactivate(uuid.New(), service.ID)
	require.ErrorIs(t, err, ErrNotActivated)
}

func TestSaveTokensUpsertsAndKeepsRefreshToken(t *testing.T) {
	db := testDB(t)
	svc := NewActivationService(db)
	seedService(t, db, ServiceEmail, true)
	userID := uuid.New()

	first, err := svc.SaveTokens(userID, ServiceEmail, "access-1", "refresh-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "access-1", first.AccessToken)

	// Google omits the refresh token on later consents; the stored one stays.
	_, err = svc.SaveTokens(userID, ServiceEmail, "access-2", "", time.Now().Add(time.Hour))
	require.NoError(t, err)

	var activation UserService
	require.NoError(t, db.First(&activation, "user_id = ?", userID).Error)
	assert.Equal(t, "access-2", activation.AccessToken)
	assert.Equal(t, "refresh-1", activation.RefreshToken)
}

func TestListForUserPreloadsService(t *testing.T) {
	db := testDB(t)
	svc := NewActivationService(db)
	service := seedService(t, db, ServiceDrive, true)
	userID := uuid.New()

	_, err := svc.Activate(userID, service.ID)
	require.NoError(t, err)

	activations, err := svc.ListForUser(userID)
	require.NoError(t, err)
	require.Len(t, activations, 1)
	require.NotNil(t, activations[0].Service)
	assert.Equal(t, ServiceDrive, activations[0].Service.Name)
}

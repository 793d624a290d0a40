package hub

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func seedWidget(t *testing.T, db *gorm.DB, serviceID uuid.UUID, name string) *Widget {
	t.Helper()
	widget := Widget{
		ID:          uuid.New(),
		ServiceID:   serviceID,
		Name:        name,
		DisplayName: name,
		RefreshRate: 300,
	}
	require.NoError(t, db.Create(&widget).Error)
	return &widget
}

func TestCreateInstanceRequiresConnectedService(t *testing.T) {
	db := testDB(t)
	svc := NewInstanceService(db)
	service := seedService(t, db, ServiceEmail, true)
	widget := seedWidget(t, db, service.ID, "unread_emails")
	userID := uuid.New()

	_, err := svc.Create(userID, widget.ID, nil, 0)
	require.ErrorIs(t, err, ErrServiceNotConnected)

	// After activation the placement goes through.
	_, err = NewActivationService(db).Activate(userID, service.ID)
	require.NoError(t, err)

	instance, err := svc.Create(userID, widget.ID, datatypes.JSON(`{"max_results":5}`), 0)
	require.NoError(t, err)
	assert.Equal(t, widget.RefreshRate, instance.RefreshRate)
	assert.True(t, instance.IsActive)
}

func TestCreateInstancePublicServiceNeedsNoActivation(t *testing.T) {
	db := testDB(t)
	svc := NewInstanceService(db)
	service := seedService(t, db, ServiceWeather, false)
	widget := seedWidget(t, db, service.ID, "weather_today")

	instance, err := svc.Create(uuid.New(), widget.ID, datatypes.JSON(`{"city":"Lyon"}`), 60)
	require.NoError(t, err)
	assert.Equal(t, 60, instance.RefreshRate)
}

func TestInstanceOwnerChecks(t *testing.T) {
	db := testDB(t)
	svc := NewInstanceService(db)
	service := seedService(t, db, ServiceWeather, false)
	widget := seedWidget(t, db, service.ID, "weather_today")

	owner := uuid.New()
	instance, err := svc.Create(owner, widget.ID, nil, 0)
	require.NoError(t, err)

	stranger := uuid.New()
	_, err = svc.Get(stranger, instance.ID)
	require.ErrorIs(t, err, ErrNotInstanceOwner)

	err = svc.Delete(stranger, instance.ID)
	require.ErrorIs(t, err, ErrNotInstanceOwner)

	require.NoError(t, svc.Delete(owner, instance.ID))

	_, err = svc.Get(owner, instance.ID)
	require.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestUpdateInstancePartialFields(t *testing.T) {
	db := testDB(t)
	svc := NewInstanceService(db)
	service := seedService(t, db, ServiceWeather, false)
	widget := seedWidget(t, db, service.ID, "weather_today")
	userID := uuid.New()

	instance, err := svc.Create(userID, widget.ID, datatypes.JSON(`{"city":"Lyon"}`), 0)
	require.NoError(t, err)

	rate := 900
	updated, err := svc.Update(userID, instance.ID, InstanceUpdate{RefreshRate: &rate})
	require.NoError(t, err)
	assert.Equal(t, 900, updated.RefreshRate)
	assert.JSONEq(t, `{"city":"Lyon"}`, string(updated.Config))

	inactive := false
	updated, err = svc.Update(userID, instance.ID, InstanceUpdate{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	// Inactive placements drop out of the dashboard listing.
	list, err := svc.ListForUser(userID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIsIdempotent(t *testing.T) {
	db := testDB(t)
	app := New()

	require.NoError(t, app.Seed(db))
	require.NoError(t, app.Seed(db))

	var services int64
	require.NoError(t, db.Model(&Service{}).Count(&services).Error)
	assert.EqualValues(t, 4, services)

	var widgets int64
	require.NoError(t, db.Model(&Widget{}).Count(&widgets).Error)
	assert.EqualValues(t, 9, widgets)

	catalog := NewCatalogService(db)
	public, err := catalog.ListPublicServices()
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, ServiceWeather, public[0].Name)
	assert.Len(t, public[0].Widgets, 2)
}

package showtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteGroupAddAndRemove(t *testing.T) {
	db := testDB(t)
	svc := NewProfileService(db)
	groups := NewGroupService(db)
	user := createUser(t, db)

	band, err := groups.Create(&GroupInput{Name: "Night Owls", Bio: "late sets", Genre: GenreIndie})
	require.NoError(t, err)

	require.NoError(t, svc.AddFavoriteGroup(user.ID, band.ID))

	favorites, err := svc.ListFavoriteGroups(user.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, band.ID, favorites[0].ID)

	// Duplicate add conflicts.
	err = svc.AddFavoriteGroup(user.ID, band.ID)
	require.ErrorIs(t, err, ErrAlreadyFavorite)

	// Removal, then removal again: idempotent.
	require.NoError(t, svc.RemoveFavoriteGroup(user.ID, band.ID))
	require.NoError(t, svc.RemoveFavoriteGroup(user.ID, band.ID))

	favorites, err = svc.ListFavoriteGroups(user.ID)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestFavoriteGroupRequiresBothSides(t *testing.T) {
	db := testDB(t)
	svc := NewProfileService(db)
	groups := NewGroupService(db)
	user := createUser(t, db)

	band, err := groups.Create(&GroupInput{Name: "Echo", Bio: "reverb heavy", Genre: GenreElectronic})
	require.NoError(t, err)

	err = svc.AddFavoriteGroup(uuid.New(), band.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	err = svc.AddFavoriteGroup(user.ID, uuid.New())
	require.ErrorIs(t, err, ErrGroupNotFound)
}

func TestWishlistAddAndRemove(t *testing.T) {
	db := testDB(t)
	svc := NewProfileService(db)
	user := createUser(t, db)
	concert := createConcert(t, db, 10)

	require.NoError(t, svc.AddToWishlist(user.ID, concert.ID))

	wishlist, err := svc.ListWishlist(user.ID)
	require.NoError(t, err)
	require.Len(t, wishlist, 1)
	assert.Equal(t, concert.ID, wishlist[0].ID)

	err = svc.AddToWishlist(user.ID, concert.ID)
	require.ErrorIs(t, err, ErrAlreadyWishlisted)

	require.NoError(t, svc.RemoveFromWishlist(user.ID, concert.ID))
	require.NoError(t, svc.RemoveFromWishlist(user.ID, concert.ID))

	wishlist, err = svc.ListWishlist(user.ID)
	require.NoError(t, err)
	assert.Empty(t, wishlist)
}

func TestWishlistRequiresBothSides(t *testing.T) {
	db := testDB(t)
	svc := NewProfileService(db)
	user := createUser(t, db)
	concert := createConcert(t, db, 10)

	err := svc.AddToWishlist(uuid.New(), concert.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	err = svc.AddToWishlist(user.ID, uuid.New())
	require.ErrorIs(t, err, ErrConcertNotFound)
}

func TestWishlistOrderedByDate(t *testing.T) {
	db := testDB(t)
	svc := NewProfileService(db)
	user := createUser(t, db)

	later := createConcert(t, db, 5)
	require.NoError(t, db.Model(later).Update("date", time.Now().AddDate(0, 1, 0)).Error)
	sooner := createConcert(t, db, 5)

	require.NoError(t, svc.AddToWishlist(user.ID, later.ID))
	require.NoError(t, svc.AddToWishlist(user.ID, sooner.ID))

	wishlist, err := svc.ListWishlist(user.ID)
	require.NoError(t, err)
	require.Len(t, wishlist, 2)
	assert.Equal(t, sooner.ID, wishlist[0].ID)
	assert.Equal(t, later.ID, wishlist[1].ID)
}

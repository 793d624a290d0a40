package showtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateConcertRejectsPastDate(t *testing.T) {
	db := testDB(t)
	svc := NewConcertService(db)

	_, err := svc.Create(&ConcertInput{
		Name:       "Retro Night",
		Genre:      GenrePop,
		Date:       time.Now().Add(-time.Hour),
		Location:   "Paris",
		Price:      20,
		TotalSeats: 100,
	})
	require.ErrorIs(t, err, ErrPastDate)
}

func TestCreateConcertRejectsUnknownGenre(t *testing.T) {
	db := testDB(t)
	svc := NewConcertService(db)

	_, err := svc.Create(&ConcertInput{
		Name:       "Mystery",
		Genre:      "POLKA",
		Date:       time.Now().Add(time.Hour),
		Location:   "Paris",
		Price:      20,
		TotalSeats: 100,
	})
	require.ErrorIs(t, err, ErrInvalidGenre)
}

func TestCreateConcertStartsWithFullInventory(t *testing.T) {
	db := testDB(t)
	svc := NewConcertService(db)

	concert, err := svc.Create(&ConcertInput{
		Name:       "Jazz Evening",
		Genre:      GenreJazz,
		Date:       time.Now().Add(24 * time.Hour),
		Location:   "Marseille",
		Price:      35,
		TotalSeats: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, concert.TotalSeats)
	assert.Equal(t, 50, concert.AvailableSeats)
}

func TestListConcertsFilters(t *testing.T) {
	db := testDB(t)
	svc := NewConcertService(db)
	groups := NewGroupService(db)

	band, err := groups.Create(&GroupInput{Name: "The Quintet", Bio: "five of them", Genre: GenreJazz})
	require.NoError(t, err)

	mk := func(name, genre string, days int, groupIDs ...uuid.UUID) *Concert {
		c, err := svc.Create(&ConcertInput{
			Name:       name,
			Genre:      genre,
			Date:       time.Now().AddDate(0, 0, days),
			Location:   "Lille",
			Price:      25,
			TotalSeats: 10,
			GroupIDs:   groupIDs,
		})
		require.NoError(t, err)
		return c
	}

	mk("Swing Session", GenreJazz, 7, band.ID)
	mk("Metal Storm", GenreMetal, 14)
	mk("Next Year Gala", GenreJazz, 120) // outside the default 2-month window

	// Default window excludes the far-future concert.
	page, err := svc.List(ConcertFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)

	// Genre filter.
	page, err = svc.List(ConcertFilter{Genre: GenreJazz})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Swing Session", page.Data[0].Name)

	// Case-insensitive search.
	page, err = svc.List(ConcertFilter{Search: "sToRm"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Metal Storm", page.Data[0].Name)

	// Group filter.
	page, err = svc.List(ConcertFilter{GroupID: band.ID})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Swing Session", page.Data[0].Name)

	// Widened window includes everything, date ascending.
	page, err = svc.List(ConcertFilter{DateTo: time.Now().AddDate(1, 0, 0)})
	require.NoError(t, err)
	require.Len(t, page.Data, 3)
	assert.Equal(t, "Swing Session", page.Data[0].Name)
	assert.Equal(t, "Next Year Gala", page.Data[2].Name)
}

func TestListConcertsPagination(t *testing.T) {
	db := testDB(t)
	svc := NewConcertService(db)

	for i := 0; i < 5; i++ {
		_, err := svc.Create(&ConcertInput{
			Name:       "Show",
			Genre:      GenreIndie,
			Date:       time.Now().AddDate(0, 0, i+1),
			Location:   "Nantes",
			Price:      15,
			TotalSeats: 10,
		})
		require.NoError(t, err)
	}

	page, err := svc.List(ConcertFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.EqualValues(t, 5, page.Total)
	assert.EqualValues(t, 3, page.TotalPages)
}

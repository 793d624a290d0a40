package showtime

import (
	"errors"
	"sync"
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

	// A single connection keeps the in-memory database alive and serializes
	// concurrent transactions.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &Concert{}, &Group{}, &Ticket{}))
	return db
}

func testConfig() *config.Config {
	return &config.Config{FrontendURL: "http://localhost:3000"}
}

func createUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		Username: "fan",
		Role:     models.RoleUser,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createConcert(t *testing.T, db *gorm.DB, seats int) *Concert {
	t.Helper()
	concert := Concert{
		ID:             uuid.New(),
		Name:           "Open Air",
		Genre:          GenreRock,
		Date:           time.Now().Add(48 * time.Hour),
		Location:       "Lyon",
		Price:          49.90,
		TotalSeats:     seats,
		AvailableSeats: seats,
	}
	require.NoError(t, db.Create(&concert).Error)
	return &concert
}

func TestPurchaseDecrementsSeatAndIssuesTicket(t *testing.T) {
	db := testDB(t)
	svc := NewTicketService(db, testConfig())
	user := createUser(t, db)
	concert := createConcert(t, db, 3)

	ticket, err := svc.Purchase(user.ID, concert.ID)
	require.NoError(t, err)

	assert.Equal(t, TicketBooked, ticket.Status)
	assert.Equal(t, concert.Price, ticket.Price)
	assert.Contains(t, ticket.QRCode, "quickchart.io/qr")
	assert.Contains(t, ticket.QRCode, concert.ID.String())
	require.NotNil(t, ticket.Concert)
	assert.Equal(t, concert.ID, ticket.Concert.ID)

	var reloaded Concert
	require.NoError(t, db.First(&reloaded, "id = ?", concert.ID).Error)
	assert.Equal(t, 2, reloaded.AvailableSeats)
}

func TestPurchaseExhaustsSeatsThenConflicts(t *testing.T) {
	db := testDB(t)
	svc := NewTicketService(db, testConfig())
	user := createUser(t, db)
	concert := createConcert(t, db, 3)

	for i := 0; i < 3; i++ {
		_, err := svc.Purchase(user.ID, concert.ID)
		require.NoError(t, err)
	}

	_, err := svc.Purchase(user.ID, concert.ID)
	require.ErrorIs(t, err, ErrSoldOut)

	var reloaded Concert
	require.NoError(t, db.First(&reloaded, "id = ?", concert.ID).Error)
	assert.Equal(t, 0, reloaded.AvailableSeats)

	var count int64
	require.NoError(t, db.Model(&Ticket{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestPurchaseUnknownConcertOrUser(t *testing.T) {
	db := testDB(t)
	svc := NewTicketService(db, testConfig())
	user := createUser(t, db)
	concert := createConcert(t, db, 1)

	_, err := svc.Purchase(user.ID, uuid.New())
	require.ErrorIs(t, err, ErrConcertNotFound)

	_, err = svc.Purchase(uuid.New(), concert.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	// No partial state from either failure.
	var reloaded Concert
	require.NoError(t, db.First(&reloaded, "id = ?", concert.ID).Error)
	assert.Equal(t, 1, reloaded.AvailableSeats)

	var count int64
	require.NoError(t, db.Model(&Ticket{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestConcurrentPurchaseOfLastSeat(t *testing.T) {
	db := testDB(t)
	svc := NewTicketService(db, testConfig())
	user := createUser(t, db)
	concert := createConcert(t, db, 1)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = svc.Purchase(user.ID, concert.ID)
		}(i)
	}
	wg.Wait()

	var soldOut, ok int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrSoldOut):
			soldOut++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, soldOut)

	var reloaded Concert
	require.NoError(t, db.First(&reloaded, "id = ?", concert.ID).Error)
	assert.Equal(t, 0, reloaded.AvailableSeats)

	var count int64
	require.NoError(t, db.Model(&Ticket{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRemoveRestoresSeat(t *testing.T) {
	db := testDB(t)
	svc := NewTicketService(db, testConfig())
	user := createUser(t, db)
	concert := createConcert(t, db, 2)

	ticket, err := svc.Purchase(user.ID, concert.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ticket.ID))

	var reloaded Concert
	require.NoError(t, db.First(&reloaded, "id = ?", concert.ID).Error)
	assert.Equal(t, 2, reloaded.AvailableSeats)

	_, err = svc.Get(ticket.ID)
	require.ErrorIs(t, err, ErrTicketNotFound)
}

func TestRemoveUnknownTicketLeavesInventory(t *testing.T) {
	db := testDB(t)
	svc := NewTicketService(db, testConfig())
	user := createUser(t, db)
	concert := createConcert(t, db, 2)

	_, err := svc.Purchase(user.ID, concert.ID)
	require.NoError(t, err)

	err = svc.Remove(uuid.New())
	require.ErrorIs(t, err, ErrTicketNotFound)

	var reloaded Concert
	require.NoError(t, db.First(&reloaded, "id = ?", concert.ID).Error)
	assert.Equal(t, 1, reloaded.AvailableSeats)
}

func TestRemoveTicketWithoutConcertConflicts(t *testing.T) {
	db := testDB(t)
	svc := NewTicketService(db, testConfig())
	user := createUser(t, db)

	orphan := Ticket{
		ID:     uuid.New(),
		UserID: user.ID,
		Price:  10,
		Status: TicketBooked,
	}
	require.NoError(t, db.Create(&orphan).Error)

	err := svc.Remove(orphan.ID)
	require.ErrorIs(t, err, ErrTicketNoConcert)
}

func TestRemoveNeverExceedsTotalSeats(t *testing.T) {
	db := testDB(t)
	svc := NewTicketService(db, testConfig())
	user := createUser(t, db)
	concert := createConcert(t, db, 1)

	cid := concert.ID
	stray := Ticket{
		ID:        uuid.New(),
		UserID:    user.ID,
		ConcertID: &cid,
		Price:     concert.Price,
		Status:    TicketBooked,
	}
	require.NoError(t, db.Create(&stray).Error)

	// The concert still has its full inventory, so the guarded increment
	// must not push it past total_seats.
	require.NoError(t, svc.Remove(stray.ID))

	var reloaded Concert
	require.NoError(t, db.First(&reloaded, "id = ?", concert.ID).Error)
	assert.Equal(t, 1, reloaded.AvailableSeats)
}

func TestListByUserRequiresUser(t *testing.T) {
	db := testDB(t)
	svc := NewTicketService(db, testConfig())
	user := createUser(t, db)
	concert := createConcert(t, db, 2)

	_, err := svc.Purchase(user.ID, concert.ID)
	require.NoError(t, err)

	tickets, err := svc.ListByUser(user.ID)
	require.NoError(t, err)
	assert.Len(t, tickets, 1)

	_, err = svc.ListByUser(uuid.New())
	require.ErrorIs(t, err, ErrUserNotFound)
}

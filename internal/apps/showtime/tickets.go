package showtime

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/fredseo/showhub-backend/internal/config"
	"github.com/fredseo/showhub-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrSoldOut         = errors.New("no seats available")
	ErrTicketNoConcert = errors.New("ticket is not associated to a concert")
	ErrUserNotFound    = errors.New("user not found")
)

// TicketService owns the seat inventory transitions. Every purchase and
// removal runs in one transaction around a guarded counter update, so the
// available-seat count can never leave [0, total_seats].
type TicketService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewTicketService(db *gorm.DB, cfg *config.Config) *TicketService {
	return &TicketService{db: db, cfg: cfg}
}

// Purchase reserves one seat and issues a ticket. The decrement is a single
// conditional UPDATE; when it matches no row the concert is sold out and the
// transaction rolls back with nothing persisted.
func (s *TicketService) Purchase(userID, concertID uuid.UUID) (*Ticket, error) {
	var ticket Ticket

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var concert Concert
		if err := tx.First(&concert, "id = ?", concertID).Error; err != nil {
			return ErrConcertNotFound
		}

		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return ErrUserNotFound
		}

		res := tx.Model(&Concert{}).
			Where("id = ? AND available_seats > 0", concertID).
			UpdateColumn("available_seats", gorm.Expr("available_seats - 1"))
		if res.Error != nil {
			return fmt.Errorf("failed to reserve seat: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w for %s", ErrSoldOut, concert.Name)
		}

		cid := concertID
		ticket = Ticket{
			ID:        uuid.New(),
			UserID:    userID,
			ConcertID: &cid,
			Price:     concert.Price,
			Status:    TicketBooked,
			QRCode:    s.qrCodeURL(concertID),
		}
		if err := tx.Create(&ticket).Error; err != nil {
			return fmt.Errorf("failed to create ticket: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("User").Preload("Concert").First(&ticket, "id = ?", ticket.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload ticket: %w", err)
	}
	return &ticket, nil
}

// Remove deletes the ticket and restores its seat. The increment is guarded
// so a restore can never push the counter past total_seats.
func (s *TicketService) Remove(ticketID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var ticket Ticket
		if err := tx.First(&ticket, "id = ?", ticketID).Error; err != nil {
			return ErrTicketNotFound
		}
		if ticket.ConcertID == nil {
			return ErrTicketNoConcert
		}

		if err := tx.Delete(&ticket).Error; err != nil {
			return fmt.Errorf("failed to delete ticket: %w", err)
		}

		res := tx.Model(&Concert{}).
			Where("id = ? AND available_seats < total_seats", *ticket.ConcertID).
			UpdateColumn("available_seats", gorm.Expr("available_seats + 1"))
		if res.Error != nil {
			return fmt.Errorf("failed to restore seat: %w", res.Error)
		}
		return nil
	})
}

func (s *TicketService) List() ([]Ticket, error) {
	var tickets []Ticket
	err := s.db.Preload("User").Preload("Concert").
		Order("created_at desc").
		Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

func (s *TicketService) Get(id uuid.UUID) (*Ticket, error) {
	var ticket Ticket
	err := s.db.Preload("User").Preload("Concert.Groups").First(&ticket, "id = ?", id).Error
	if err != nil {
		return nil, ErrTicketNotFound
	}
	return &ticket, nil
}

func (s *TicketService) ListByUser(userID uuid.UUID) ([]Ticket, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	var tickets []Ticket
	err := s.db.Preload("User").Preload("Concert").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user tickets: %w", err)
	}
	return tickets, nil
}

func (s *TicketService) qrCodeURL(concertID uuid.UUID) string {
	link := s.cfg.FrontendURL + "/concerts/" + concertID.String()
	return "https://quickchart.io/qr?text=" + url.QueryEscape(link) + "&size=300"
}

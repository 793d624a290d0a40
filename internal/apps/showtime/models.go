package showtime

import (
	"time"

	"github.com/fredseo/showhub-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Concert genres. Stored as text, validated at the service layer.
const (
	GenreRock       = "ROCK"
	GenrePop        = "POP"
	GenreJazz       = "JAZZ"
	GenreElectronic = "ELECTRONIC"
	GenreHipHop     = "HIP_HOP"
	GenreClassical  = "CLASSICAL"
	GenreMetal      = "METAL"
	GenreIndie      = "INDIE"
	GenreOther      = "OTHER"
)

var validGenres = map[string]bool{
	GenreRock:       true,
	GenrePop:        true,
	GenreJazz:       true,
	GenreElectronic: true,
	GenreHipHop:     true,
	GenreClassical:  true,
	GenreMetal:      true,
	GenreIndie:      true,
	GenreOther:      true,
}

// Ticket statuses.
const (
	TicketBooked = "BOOKED"
)

// Concert is an event with a fixed seat inventory. AvailableSeats starts at
// TotalSeats and must stay within [0, TotalSeats].
type Concert struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string        `gorm:"size:200;not null" json:"name"`
	Description    string        `gorm:"type:text" json:"description"`
	Genre          string        `gorm:"size:20;not null" json:"genre"`
	Date           time.Time     `gorm:"not null;index" json:"date"`
	Location       string        `gorm:"size:200;not null" json:"location"`
	Image          string        `gorm:"type:text" json:"image,omitempty"`
	Price          float64       `gorm:"not null" json:"price"`
	TotalSeats     int           `gorm:"not null" json:"total_seats"`
	AvailableSeats int           `gorm:"not null" json:"available_seats"`
	Groups         []Group       `gorm:"many2many:concert_groups" json:"groups,omitempty"`
	WishedBy       []models.User `gorm:"many2many:user_wishlist_concerts" json:"-"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (c *Concert) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Group is a band that plays concerts and collects fans.
type Group struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string        `gorm:"size:100;not null" json:"name"`
	Bio       string        `gorm:"type:text" json:"bio"`
	Genre     string        `gorm:"size:20;not null" json:"genre"`
	Image     string        `gorm:"type:text" json:"image,omitempty"`
	Concerts  []Concert     `gorm:"many2many:concert_groups" json:"concerts,omitempty"`
	Fans      []models.User `gorm:"many2many:user_favorite_groups" json:"fans,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// Ticket is one reserved seat. ConcertID is nullable so tickets survive a
// concert deletion; removal of such a ticket is refused.
type Ticket struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	ConcertID *uuid.UUID  `gorm:"type:uuid;index" json:"concert_id,omitempty"`
	Price     float64     `gorm:"not null" json:"price"`
	Status    string      `gorm:"size:20;default:'BOOKED'" json:"status"`
	QRCode    string      `gorm:"type:text" json:"qr_code"`
	User      models.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Concert   *Concert    `gorm:"foreignKey:ConcertID;constraint:OnDelete:SET NULL" json:"concert,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

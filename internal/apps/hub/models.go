package hub

import (
	"time"

	"github.com/fredseo/showhub-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service types.
const (
	ServiceTypePublic   = "PUBLIC"
	ServiceTypePersonal = "PERSONAL"
)

// Names of the built-in services.
const (
	ServiceWeather  = "weather"
	ServiceCalendar = "calendar"
	ServiceEmail    = "email"
	ServiceDrive    = "google_drive"
)

// Service is an integrable third-party service in the directory.
type Service struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:50;not null;uniqueIndex" json:"name"`
	DisplayName  string    `gorm:"size:100" json:"display_name"`
	Description  string    `gorm:"type:text" json:"description"`
	Type         string    `gorm:"size:20;default:'PUBLIC'" json:"type"`
	RequiresAuth bool      `gorm:"default:false" json:"requires_auth"`
	Widgets      []Widget  `gorm:"foreignKey:ServiceID" json:"widgets,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Widget is a parametrized data view a service exposes. Pure metadata.
type Widget struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ServiceID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_widgets_service_name" json:"service_id"`
	Name        string         `gorm:"size:50;not null;uniqueIndex:idx_widgets_service_name" json:"name"`
	DisplayName string         `gorm:"size:100" json:"display_name"`
	Description string         `gorm:"type:text" json:"description"`
	ParamSchema datatypes.JSON `gorm:"type:jsonb" json:"param_schema"`
	RefreshRate int            `gorm:"default:300" json:"refresh_rate"` // seconds
	Service     *Service       `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (w *Widget) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// UserService is a user's activation of one service, holding its OAuth
// credentials. Unique per (user, service).
type UserService struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_services_user_service" json:"user_id"`
	ServiceID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_services_user_service" json:"service_id"`
	AccessToken  string         `gorm:"type:text" json:"-"`
	RefreshToken string         `gorm:"type:text" json:"-"`
	TokenExpiry  *time.Time     `json:"token_expiry,omitempty"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	Config       datatypes.JSON `gorm:"type:jsonb" json:"config,omitempty"`
	User         models.User    `gorm:"foreignKey:UserID" json:"-"`
	Service      *Service       `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (us *UserService) BeforeCreate(tx *gorm.DB) error {
	if us.ID == uuid.Nil {
		us.ID = uuid.New()
	}
	return nil
}

// WidgetInstance is a per-user placement of a widget with its own config.
type WidgetInstance struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	WidgetID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"widget_id"`
	Config      datatypes.JSON `gorm:"type:jsonb" json:"config,omitempty"`
	RefreshRate int            `gorm:"default:300" json:"refresh_rate"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	User        models.User    `gorm:"foreignKey:UserID" json:"-"`
	Widget      *Widget        `gorm:"foreignKey:WidgetID" json:"widget,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (wi *WidgetInstance) BeforeCreate(tx *gorm.DB) error {
	if wi.ID == uuid.Nil {
		wi.ID = uuid.New()
	}
	return nil
}

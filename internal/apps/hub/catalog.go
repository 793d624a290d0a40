package hub

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrServiceNotFound = errors.New("service not found")
	ErrWidgetNotFound  = errors.New("widget not found")
)

// CatalogService serves the service directory and its widgets. The catalog is
// descriptive metadata only; it is stored and returned verbatim.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListServices() ([]Service, error) {
	var services []Service
	if err := s.db.Preload("Widgets").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// ListPublicServices returns services usable without connecting an account.
func (s *CatalogService) ListPublicServices() ([]Service, error) {
	var services []Service
	err := s.db.Preload("Widgets").
		Where("type = ? AND requires_auth = ?", ServiceTypePublic, false).
		Find(&services).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list public services: %w", err)
	}
	return services, nil
}

func (s *CatalogService) GetService(id uuid.UUID) (*Service, error) {
	var service Service
	if err := s.db.Preload("Widgets").First(&service, "id = ?", id).Error; err != nil {
		return nil, ErrServiceNotFound
	}
	return &service, nil
}

func (s *CatalogService) GetServiceByName(name string) (*Service, error) {
	var service Service
	if err := s.db.Preload("Widgets").First(&service, "name = ?", name).Error; err != nil {
		return nil, ErrServiceNotFound
	}
	return &service, nil
}

func (s *CatalogService) ListWidgets() ([]Widget, error) {
	var widgets []Widget
	if err := s.db.Preload("Service").Find(&widgets).Error; err != nil {
		return nil, fmt.Errorf("failed to list widgets: %w", err)
	}
	return widgets, nil
}

func (s *CatalogService) ListServiceWidgets(serviceID uuid.UUID) ([]Widget, error) {
	var widgets []Widget
	err := s.db.Preload("Service").Where("service_id = ?", serviceID).Find(&widgets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list service widgets: %w", err)
	}
	return widgets, nil
}

func (s *CatalogService) GetWidget(id uuid.UUID) (*Widget, error) {
	var widget Widget
	if err := s.db.Preload("Service").First(&widget, "id = ?", id).Error; err != nil {
		return nil, ErrWidgetNotFound
	}
	return &widget, nil
}

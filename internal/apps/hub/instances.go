package hub

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrInstanceNotFound    = errors.New("widget instance not found")
	ErrNotInstanceOwner    = errors.New("widget instance belongs to another user")
	ErrServiceNotConnected = errors.New("service must be connected first")
)

// InstanceService manages per-user widget placements.
type InstanceService struct {
	db *gorm.DB
}

func NewInstanceService(db *gorm.DB) *InstanceService {
	return &InstanceService{db: db}
}

func (s *InstanceService) ListForUser(userID uuid.UUID) ([]WidgetInstance, error) {
	var instances []WidgetInstance
	err := s.db.Preload("Widget.Service").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at asc").
		Find(&instances).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list widget instances: %w", err)
	}
	return instances, nil
}

// Create places a widget for the user. Widgets of auth-requiring services
// can only be placed once the service is activated.
func (s *InstanceService) Create(userID, widgetID uuid.UUID, config datatypes.JSON, refreshRate int) (*WidgetInstance, error) {
	var widget Widget
	if err := s.db.Preload("Service").First(&widget, "id = ?", widgetID).Error; err != nil {
		return nil, ErrWidgetNotFound
	}

	if widget.Service != nil && widget.Service.RequiresAuth {
		var activation UserService
		err := s.db.Where("user_id = ? AND service_id = ? AND is_active = ?",
			userID, widget.ServiceID, true).First(&activation).Error
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrServiceNotConnected, widget.Service.DisplayName)
		}
	}

	if refreshRate <= 0 {
		refreshRate = widget.RefreshRate
	}

	instance := WidgetInstance{
		ID:          uuid.New(),
		UserID:      userID,
		WidgetID:    widgetID,
		Config:      config,
		RefreshRate: refreshRate,
		IsActive:    true,
	}
	if err := s.db.Create(&instance).Error; err != nil {
		return nil, fmt.Errorf("failed to create widget instance: %w", err)
	}
	instance.Widget = &widget
	return &instance, nil
}

// InstanceUpdate carries the mutable fields; nil pointers are left untouched.
type InstanceUpdate struct {
	Config      datatypes.JSON
	RefreshRate *int
	IsActive    *bool
}

func (s *InstanceService) Update(userID, instanceID uuid.UUID, upd InstanceUpdate) (*WidgetInstance, error) {
	instance, err := s.owned(userID, instanceID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if upd.Config != nil {
		updates["config"] = upd.Config
	}
	if upd.RefreshRate != nil {
		updates["refresh_rate"] = *upd.RefreshRate
	}
	if upd.IsActive != nil {
		updates["is_active"] = *upd.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(instance).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update widget instance: %w", err)
		}
	}

	if err := s.db.Preload("Widget.Service").First(instance, "id = ?", instanceID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload widget instance: %w", err)
	}
	return instance, nil
}

func (s *InstanceService) Delete(userID, instanceID uuid.UUID) error {
	instance, err := s.owned(userID, instanceID)
	if err != nil {
		return err
	}
	return s.db.Delete(instance).Error
}

func (s *InstanceService) Get(userID, instanceID uuid.UUID) (*WidgetInstance, error) {
	instance, err := s.owned(userID, instanceID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Preload("Widget.Service").First(instance, "id = ?", instanceID).Error; err != nil {
		return nil, fmt.Errorf("failed to load widget instance: %w", err)
	}
	return instance, nil
}

func (s *InstanceService) owned(userID, instanceID uuid.UUID) (*WidgetInstance, error) {
	var instance WidgetInstance
	if err := s.db.First(&instance, "id = ?", instanceID).Error; err != nil {
		return nil, ErrInstanceNotFound
	}
	if instance.UserID != userID {
		return nil, ErrNotInstanceOwner
	}
	return &instance, nil
}

package hub

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrAlreadyActivated = errors.New("service already activated")
	ErrNotActivated     = errors.New("service not activated")
)

// ActivationService manages the per-user service activation records and the
// OAuth tokens they carry.
type ActivationService struct {
	db *gorm.DB
}

func NewActivationService(db *gorm.DB) *ActivationService {
	return &ActivationService{db: db}
}

func (s *ActivationService) ListForUser(userID uuid.UUID) ([]UserService, error) {
	var activations []UserService
	err := s.db.Preload("Service").Where("user_id = ?", userID).Find(&activations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user services: %w", err)
	}
	return activations, nil
}

func (s *ActivationService) Activate(userID, serviceID uuid.UUID) (*UserService, error) {
	var service Service
	if err := s.db.First(&service, "id = ?", serviceID).Error; err != nil {
		return nil, ErrServiceNotFound
	}

	var existing UserService
	err := s.db.Where("user_id = ? AND service_id = ?", userID, serviceID).First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyActivated
	}

	activation := UserService{
		ID:        uuid.New(),
		UserID:    userID,
		ServiceID: serviceID,
		IsActive:  true,
	}
	if err := s.db.Create(&activation).Error; err != nil {
		return nil, fmt.Errorf("failed to activate service: %w", err)
	}
	activation.Service = &service
	return &activation, nil
}

func (s *ActivationService) Deactivate(userID, serviceID uuid.UUID) error {
	var activation UserService
	err := s.db.Where("user_id = ? AND service_id = ?", userID, serviceID).First(&activation).Error
	if err != nil {
		return ErrNotActivated
	}
	return s.db.Delete(&activation).Error
}

// SaveTokens upserts the activation for the named service with a fresh OAuth
// token pair. Called from the connect callback after a code exchange.
func (s *ActivationService) SaveTokens(userID uuid.UUID, serviceName, accessToken, refreshToken string, expiry time.Time) (*UserService, error) {
	var service Service
	if err := s.db.First(&service, "name = ?", serviceName).Error; err != nil {
		return nil, ErrServiceNotFound
	}

	var activation UserService
	err := s.db.Where("user_id = ? AND service_id = ?", userID, service.ID).First(&activation).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		activation = UserService{
			ID:           uuid.New(),
			UserID:       userID,
			ServiceID:    service.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenExpiry:  &expiry,
			IsActive:     true,
		}
		if err := s.db.Create(&activation).Error; err != nil {
			return nil, fmt.Errorf("failed to store tokens: %w", err)
		}
	case err == nil:
		updates := map[string]interface{}{
			"access_token": accessToken,
			"token_expiry": expiry,
			"is_active":    true,
		}
		// A refresh token is only returned on the first consent; keep the
		// stored one when Google omits it.
		if refreshToken != "" {
			updates["refresh_token"] = refreshToken
		}
		if err := s.db.Model(&activation).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update tokens: %w", err)
		}
		activation.AccessToken = accessToken
		activation.TokenExpiry = &expiry
	default:
		return nil, err
	}

	activation.Service = &service
	return &activation, nil
}

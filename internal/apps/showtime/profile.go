package showtime

import (
	"errors"
	"fmt"

	"github.com/fredseo/showhub-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrAlreadyFavorite   = errors.New("group already in favorites")
	ErrAlreadyWishlisted = errors.New("concert already in wishlist")
)

// ProfileService handles the user-side associations: favorite bands and the
// concert wishlist. Adds are strict, removals are idempotent.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

func (s *ProfileService) AddFavoriteGroup(userID, groupID uuid.UUID) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return ErrUserNotFound
	}
	var group Group
	if err := s.db.First(&group, "id = ?", groupID).Error; err != nil {
		return ErrGroupNotFound
	}

	var count int64
	err := s.db.Table("user_favorite_groups").
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check favorites: %w", err)
	}
	if count > 0 {
		return ErrAlreadyFavorite
	}

	if err := s.db.Model(&group).Association("Fans").Append(&user); err != nil {
		return fmt.Errorf("failed to add favorite group: %w", err)
	}
	return nil
}

func (s *ProfileService) RemoveFavoriteGroup(userID, groupID uuid.UUID) error {
	var group Group
	if err := s.db.First(&group, "id = ?", groupID).Error; err != nil {
		return ErrGroupNotFound
	}
	err := s.db.Model(&group).Association("Fans").Delete(&models.User{ID: userID})
	if err != nil {
		return fmt.Errorf("failed to remove favorite group: %w", err)
	}
	return nil
}

func (s *ProfileService) ListFavoriteGroups(userID uuid.UUID) ([]Group, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	var groups []Group
	err := s.db.Joins("JOIN user_favorite_groups ufg ON ufg.group_id = groups.id").
		Where("ufg.user_id = ?", userID).
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite groups: %w", err)
	}
	return groups, nil
}

func (s *ProfileService) AddToWishlist(userID, concertID uuid.UUID) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return ErrUserNotFound
	}
	var concert Concert
	if err := s.db.First(&concert, "id = ?", concertID).Error; err != nil {
		return ErrConcertNotFound
	}

	var count int64
	err := s.db.Table("user_wishlist_concerts").
		Where("user_id = ? AND concert_id = ?", userID, concertID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check wishlist: %w", err)
	}
	if count > 0 {
		return ErrAlreadyWishlisted
	}

	if err := s.db.Model(&concert).Association("WishedBy").Append(&user); err != nil {
		return fmt.Errorf("failed to add to wishlist: %w", err)
	}
	return nil
}

func (s *ProfileService) RemoveFromWishlist(userID, concertID uuid.UUID) error {
	var concert Concert
	if err := s.db.First(&concert, "id = ?", concertID).Error; err != nil {
		return ErrConcertNotFound
	}
	err := s.db.Model(&concert).Association("WishedBy").Delete(&models.User{ID: userID})
	if err != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	return nil
}

func (s *ProfileService) ListWishlist(userID uuid.UUID) ([]Concert, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	var concerts []Concert
	err := s.db.Preload("Groups").
		Joins("JOIN user_wishlist_concerts uwc ON uwc.concert_id = concerts.id").
		Where("uwc.user_id = ?", userID).
		Order("date asc").
		Find(&concerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return concerts, nil
}

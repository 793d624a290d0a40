package showtime

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GroupService is the band CRUD layer.
type GroupService struct {
	db *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db}
}

// GroupInput carries the writable group fields.
type GroupInput struct {
	Name  string `json:"name"`
	Bio   string `json:"bio"`
	Genre string `json:"genre"`
	Image string `json:"image"`
}

func (s *GroupService) Create(in *GroupInput) (*Group, error) {
	if !validGenres[in.Genre] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGenre, in.Genre)
	}

	group := Group{
		ID:    uuid.New(),
		Name:  in.Name,
		Bio:   in.Bio,
		Genre: in.Genre,
		Image: in.Image,
	}
	if err := s.db.Create(&group).Error; err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return &group, nil
}

func (s *GroupService) List() ([]Group, error) {
	var groups []Group
	if err := s.db.Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (s *GroupService) Get(id uuid.UUID) (*Group, error) {
	var group Group
	err := s.db.Preload("Concerts").Preload("Fans").First(&group, "id = ?", id).Error
	if err != nil {
		return nil, ErrGroupNotFound
	}
	return &group, nil
}

func (s *GroupService) Update(id uuid.UUID, in *GroupInput) (*Group, error) {
	var group Group
	if err := s.db.First(&group, "id = ?", id).Error; err != nil {
		return nil, ErrGroupNotFound
	}

	updates := map[string]interface{}{}
	if in.Name != "" {
		updates["name"] = in.Name
	}
	if in.Bio != "" {
		updates["bio"] = in.Bio
	}
	if in.Genre != "" {
		if !validGenres[in.Genre] {
			return nil, fmt.Errorf("%w: %s", ErrInvalidGenre, in.Genre)
		}
		updates["genre"] = in.Genre
	}
	if in.Image != "" {
		updates["image"] = in.Image
	}

	if len(updates) > 0 {
		if err := s.db.Model(&group).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update group: %w", err)
		}
	}
	return &group, nil
}

func (s *GroupService) Delete(id uuid.UUID) error {
	var group Group
	if err := s.db.First(&group, "id = ?", id).Error; err != nil {
		return ErrGroupNotFound
	}
	return s.db.Select("Concerts", "Fans").Delete(&group).Error
}

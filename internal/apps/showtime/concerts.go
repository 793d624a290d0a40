package showtime

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrConcertNotFound = errors.New("concert not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrPastDate        = errors.New("concert date must be in the future")
	ErrInvalidGenre    = errors.New("invalid genre")
)

// ConcertService is the CRUD and search layer over the concert inventory.
type ConcertService struct {
	db *gorm.DB
}

func NewConcertService(db *gorm.DB) *ConcertService {
	return &ConcertService{db: db}
}

// ConcertInput carries the writable concert fields.
type ConcertInput struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Genre       string      `json:"genre"`
	Date        time.Time   `json:"date"`
	Location    string      `json:"location"`
	Image       string      `json:"image"`
	Price       float64     `json:"price"`
	TotalSeats  int         `json:"total_seats"`
	GroupIDs    []uuid.UUID `json:"group_ids"`
}

func (s *ConcertService) Create(in *ConcertInput) (*Concert, error) {
	if !in.Date.After(time.Now()) {
		return nil, ErrPastDate
	}
	if !validGenres[in.Genre] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGenre, in.Genre)
	}
	if in.TotalSeats < 1 {
		return nil, errors.New("total_seats must be at least 1")
	}

	groups, err := s.loadGroups(in.GroupIDs)
	if err != nil {
		return nil, err
	}

	concert := Concert{
		ID:             uuid.New(),
		Name:           in.Name,
		Description:    in.Description,
		Genre:          in.Genre,
		Date:           in.Date,
		Location:       in.Location,
		Image:          in.Image,
		Price:          in.Price,
		TotalSeats:     in.TotalSeats,
		AvailableSeats: in.TotalSeats,
		Groups:         groups,
	}
	if err := s.db.Create(&concert).Error; err != nil {
		return nil, fmt.Errorf("failed to create concert: %w", err)
	}
	return &concert, nil
}

// ConcertFilter narrows List. Zero values mean "no constraint"; the date
// window defaults to [today, today+2mo].
type ConcertFilter struct {
	Genre    string
	DateFrom time.Time
	DateTo   time.Time
	GroupID  uuid.UUID
	Search   string
	Page     int
	Limit    int
}

// ConcertPage is one page of filtered concerts.
type ConcertPage struct {
	Data       []Concert `json:"data"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	Total      int64     `json:"total"`
	TotalPages int64     `json:"total_pages"`
}

func (s *ConcertService) List(f ConcertFilter) (*ConcertPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}

	dateFrom := f.DateFrom
	if dateFrom.IsZero() {
		dateFrom = time.Now().Truncate(24 * time.Hour)
	}
	dateTo := f.DateTo
	if dateTo.IsZero() {
		dateTo = time.Now().AddDate(0, 2, 0)
	}

	query := s.db.Model(&Concert{}).Where("date >= ? AND date <= ?", dateFrom, dateTo)

	if f.Genre != "" {
		if !validGenres[f.Genre] {
			return nil, fmt.Errorf("%w: %s", ErrInvalidGenre, f.Genre)
		}
		query = query.Where("genre = ?", f.Genre)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?",
			like, like, like,
		)
	}
	if f.GroupID != uuid.Nil {
		query = query.Joins("JOIN concert_groups cg ON cg.concert_id = concerts.id").
			Where("cg.group_id = ?", f.GroupID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count concerts: %w", err)
	}

	var concerts []Concert
	err := query.Preload("Groups").
		Order("date asc").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&concerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list concerts: %w", err)
	}

	totalPages := total / int64(f.Limit)
	if total%int64(f.Limit) != 0 {
		totalPages++
	}
	return &ConcertPage{
		Data:       concerts,
		Page:       f.Page,
		Limit:      f.Limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (s *ConcertService) Get(id uuid.UUID) (*Concert, error) {
	var concert Concert
	if err := s.db.Preload("Groups").First(&concert, "id = ?", id).Error; err != nil {
		return nil, ErrConcertNotFound
	}
	return &concert, nil
}

func (s *ConcertService) Upcoming(limit int) ([]Concert, error) {
	if limit <= 0 {
		limit = 10
	}
	var concerts []Concert
	err := s.db.Preload("Groups").
		Where("date >= ?", time.Now()).
		Order("date asc").
		Limit(limit).
		Find(&concerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming concerts: %w", err)
	}
	return concerts, nil
}

// ConcertUpdate carries optional field updates; nil pointers are untouched.
// Seat counters are never updated here, only through ticket operations.
type ConcertUpdate struct {
	Name        *string
	Description *string
	Genre       *string
	Date        *time.Time
	Location    *string
	Image       *string
	Price       *float64
	GroupIDs    []uuid.UUID
}

func (s *ConcertService) Update(id uuid.UUID, upd ConcertUpdate) (*Concert, error) {
	concert, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if upd.Name != nil {
		updates["name"] = *upd.Name
	}
	if upd.Description != nil {
		updates["description"] = *upd.Description
	}
	if upd.Genre != nil {
		if !validGenres[*upd.Genre] {
			return nil, fmt.Errorf("%w: %s", ErrInvalidGenre, *upd.Genre)
		}
		updates["genre"] = *upd.Genre
	}
	if upd.Date != nil {
		updates["date"] = *upd.Date
	}
	if upd.Location != nil {
		updates["location"] = *upd.Location
	}
	if upd.Image != nil {
		updates["image"] = *upd.Image
	}
	if upd.Price != nil {
		updates["price"] = *upd.Price
	}

	if len(updates) > 0 {
		if err := s.db.Model(concert).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update concert: %w", err)
		}
	}

	if upd.GroupIDs != nil {
		groups, err := s.loadGroups(upd.GroupIDs)
		if err != nil {
			return nil, err
		}
		if err := s.db.Model(concert).Association("Groups").Replace(groups); err != nil {
			return nil, fmt.Errorf("failed to update concert groups: %w", err)
		}
	}

	return s.Get(id)
}

func (s *ConcertService) Delete(id uuid.UUID) error {
	concert, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Select("Groups", "WishedBy").Delete(concert).Error
}

func (s *ConcertService) AddGroup(concertID, groupID uuid.UUID) (*Concert, error) {
	concert, err := s.Get(concertID)
	if err != nil {
		return nil, err
	}
	var group Group
	if err := s.db.First(&group, "id = ?", groupID).Error; err != nil {
		return nil, ErrGroupNotFound
	}
	if err := s.db.Model(concert).Association("Groups").Append(&group); err != nil {
		return nil, fmt.Errorf("failed to add group to concert: %w", err)
	}
	return s.Get(concertID)
}

func (s *ConcertService) RemoveGroup(concertID, groupID uuid.UUID) (*Concert, error) {
	concert, err := s.Get(concertID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(concert).Association("Groups").Delete(&Group{ID: groupID}); err != nil {
		return nil, fmt.Errorf("failed to remove group from concert: %w", err)
	}
	return s.Get(concertID)
}

func (s *ConcertService) loadGroups(ids []uuid.UUID) ([]Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var groups []Group
	if err := s.db.Where("id IN ?", ids).Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	if len(groups) != len(ids) {
		return nil, ErrGroupNotFound
	}
	return groups, nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrDuplicatePlate = errors.New("plate already registered")

type AccessRepository struct {
	db *gorm.DB
}

func NewAccessRepository(db *gorm.DB) *AccessRepository {
	return &AccessRepository{db: db}
}

type AuthorizedVehicle struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	PlateNumber string    `gorm:"not null;uniqueIndex" json:"plate_number"`
	OwnerName   string    `gorm:"not null" json:"owner_name"`
	ContactInfo *string   `json:"contact_info,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type GuestVehicle struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	PlateNumber string    `gorm:"not null" json:"plate_number"`
	OwnerName   string    `gorm:"not null" json:"owner_name"`
	Reason      *string   `json:"reason,omitempty"`
	ValidFrom   time.Time `gorm:"not null" json:"valid_from"`
	ValidUntil  time.Time `gorm:"not null" json:"valid_until"`
	AddedBy     *string   `json:"added_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Event struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EventName string    `gorm:"not null" json:"event_name"`
	EventDate string    `gorm:"not null" json:"event_date"`
	StartTime string    `gorm:"not null" json:"start_time"`
	EndTime   string    `gorm:"not null" json:"end_time"`
	Status    string    `gorm:"not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EventGuestVehicle struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	EventID     uuid.UUID `gorm:"type:uuid;not null" json:"event_id"`
	PlateNumber string    `gorm:"not null" json:"plate_number"`
	Name        string    `gorm:"not null" json:"name"`
	Reason      *string   `json:"reason,omitempty"`
	AddedBy     *string   `json:"added_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// GetAuthorizedVehicle returns nil when the plate is not allowlisted,
// reserving a non-nil error for genuine lookup failures.
func (r *AccessRepository) GetAuthorizedVehicle(ctx context.Context, plate string) (*AuthorizedVehicle, error) {
	var v AuthorizedVehicle
	err := r.db.WithContext(ctx).Where("plate_number = ?", plate).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// FindActiveGuestPass matches a guest pass whose validity window
// contains now, inclusive on both ends.
func (r *AccessRepository) FindActiveGuestPass(ctx context.Context, plate string, now time.Time) (*GuestVehicle, error) {
	var g GuestVehicle
	err := r.db.WithContext(ctx).
		Where("plate_number = ? AND valid_from <= ? AND valid_until >= ?", plate, now, now).
		First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// FindActiveEventVehicle checks every event that is active on the
// given date with a time window containing timeOfDay, and returns the
// first one listing the plate. Date is "2006-01-02", timeOfDay is
// "15:04:05"; window comparison is lexicographic, matching the column
// encoding.
func (r *AccessRepository) FindActiveEventVehicle(ctx context.Context, plate, date, timeOfDay string) (*EventGuestVehicle, error) {
	var v EventGuestVehicle
	err := r.db.WithContext(ctx).
		Table("event_guest_vehicles").
		Select("event_guest_vehicles.*").
		Joins("JOIN events ON events.id = event_guest_vehicles.event_id").
		Where("events.status = ?", "active").
		Where("events.event_date = ?", date).
		Where("events.start_time <= ? AND events.end_time >= ?", timeOfDay, timeOfDay).
		Where("event_guest_vehicles.plate_number = ?", plate).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *AccessRepository) CreateAuthorizedVehicle(ctx context.Context, v *AuthorizedVehicle) error {
	var existing AuthorizedVehicle
	err := r.db.WithContext(ctx).Where("plate_number = ?", v.PlateNumber).First(&existing).Error
	if err == nil {
		return ErrDuplicatePlate
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	v.CreatedAt = time.Now()
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *AccessRepository) ListAuthorizedVehicles(ctx context.Context) ([]AuthorizedVehicle, error) {
	var out []AuthorizedVehicle
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *AccessRepository) DeleteAuthorizedVehicle(ctx context.Context, plate string) error {
	res := r.db.WithContext(ctx).Where("plate_number = ?", plate).Delete(&AuthorizedVehicle{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *AccessRepository) CreateGuestVehicle(ctx context.Context, g *GuestVehicle) error {
	g.CreatedAt = time.Now()
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *AccessRepository) ListGuestVehicles(ctx context.Context) ([]GuestVehicle, error) {
	var out []GuestVehicle
	err := r.db.WithContext(ctx).Order("valid_from DESC").Find(&out).Error
	return out, err
}

func (r *AccessRepository) DeleteGuestVehicle(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&GuestVehicle{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *AccessRepository) CreateEvent(ctx context.Context, e *Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *AccessRepository) ListEvents(ctx context.Context, status string) ([]Event, error) {
	q := r.db.WithContext(ctx).Model(&Event{}).Order("event_date DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []Event
	err := q.Find(&out).Error
	return out, err
}

func (r *AccessRepository) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	var e Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *AccessRepository) UpdateEventStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *AccessRepository) AddEventGuestVehicle(ctx context.Context, v *EventGuestVehicle) error {
	v.CreatedAt = time.Now()
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *AccessRepository) ListEventGuestVehicles(ctx context.Context, eventID uuid.UUID) ([]EventGuestVehicle, error) {
	var out []EventGuestVehicle
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Find(&out).Error
	return out, err
}

func (r *AccessRepository) RemoveEventGuestVehicle(ctx context.Context, eventID uuid.UUID, plate string) error {
	res := r.db.WithContext(ctx).
		Where("event_id = ? AND plate_number = ?", eventID, plate).
		Delete(&EventGuestVehicle{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

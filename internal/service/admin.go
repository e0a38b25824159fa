package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"vehicle-access-service/internal/repository"
	"vehicle-access-service/internal/utils"
)

var ErrDuplicate = errors.New("already exists")

var eventStatuses = map[string]bool{
	"scheduled": true,
	"active":    true,
	"expired":   true,
}

// AdminService wraps the administrative tables the evaluator reads.
// Validation failures are rejected here and never reach the pipeline.
type AdminService struct {
	repo *repository.AccessRepository
	log  zerolog.Logger
}

func NewAdminService(repo *repository.AccessRepository, log zerolog.Logger) *AdminService {
	return &AdminService{repo: repo, log: log}
}

func (s *AdminService) AddAuthorizedVehicle(ctx context.Context, plate, owner, contact string) (*repository.AuthorizedVehicle, error) {
	plate = utils.NormalizePlate(plate)
	if plate == "" {
		return nil, fmt.Errorf("%w: plate_number is required", ErrInvalidInput)
	}
	if owner == "" {
		return nil, fmt.Errorf("%w: owner_name is required", ErrInvalidInput)
	}

	v := repository.AuthorizedVehicle{PlateNumber: plate, OwnerName: owner}
	if contact != "" {
		v.ContactInfo = &contact
	}
	if err := s.repo.CreateAuthorizedVehicle(ctx, &v); err != nil {
		if errors.Is(err, repository.ErrDuplicatePlate) {
			return nil, fmt.Errorf("%w: plate %s", ErrDuplicate, plate)
		}
		return nil, fmt.Errorf("create authorized vehicle: %w", err)
	}

	s.log.Info().Str("plate", plate).Msg("authorized vehicle added")
	return &v, nil
}

func (s *AdminService) ListAuthorizedVehicles(ctx context.Context) ([]repository.AuthorizedVehicle, error) {
	return s.repo.ListAuthorizedVehicles(ctx)
}

func (s *AdminService) RemoveAuthorizedVehicle(ctx context.Context, plate string) error {
	err := s.repo.DeleteAuthorizedVehicle(ctx, utils.NormalizePlate(plate))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: plate %s", ErrNotFound, plate)
	}
	return err
}

func (s *AdminService) AddGuestVehicle(ctx context.Context, plate, owner, reason string, validFrom, validUntil time.Time, addedBy string) (*repository.GuestVehicle, error) {
	plate = utils.NormalizePlate(plate)
	if plate == "" {
		return nil, fmt.Errorf("%w: plate_number is required", ErrInvalidInput)
	}
	if owner == "" {
		return nil, fmt.Errorf("%w: owner_name is required", ErrInvalidInput)
	}
	if validFrom.IsZero() || validUntil.IsZero() {
		return nil, fmt.Errorf("%w: valid_from and valid_until are required", ErrInvalidInput)
	}
	if validUntil.Before(validFrom) {
		return nil, fmt.Errorf("%w: valid_from must not be after valid_until", ErrInvalidInput)
	}

	g := repository.GuestVehicle{
		PlateNumber: plate,
		OwnerName:   owner,
		ValidFrom:   validFrom,
		ValidUntil:  validUntil,
	}
	if reason != "" {
		g.Reason = &reason
	}
	if addedBy != "" {
		g.AddedBy = &addedBy
	}
	if err := s.repo.CreateGuestVehicle(ctx, &g); err != nil {
		return nil, fmt.Errorf("create guest vehicle: %w", err)
	}

	s.log.Info().Str("plate", plate).Time("valid_until", validUntil).Msg("guest pass added")
	return &g, nil
}

func (s *AdminService) ListGuestVehicles(ctx context.Context) ([]repository.GuestVehicle, error) {
	return s.repo.ListGuestVehicles(ctx)
}

func (s *AdminService) RemoveGuestVehicle(ctx context.Context, id int64) error {
	err := s.repo.DeleteGuestVehicle(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: guest vehicle %d", ErrNotFound, id)
	}
	return err
}

func (s *AdminService) CreateEvent(ctx context.Context, name, date, startTime, endTime, status string) (*repository.Event, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: event_name is required", ErrInvalidInput)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: event_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	start, err := normalizeTimeOfDay(startTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start_time", ErrInvalidInput)
	}
	end, err := normalizeTimeOfDay(endTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end_time", ErrInvalidInput)
	}
	if end < start {
		return nil, fmt.Errorf("%w: start_time must not be after end_time", ErrInvalidInput)
	}
	if status == "" {
		status = "scheduled"
	}
	if !eventStatuses[status] {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	e := repository.Event{
		EventName: name,
		EventDate: date,
		StartTime: start,
		EndTime:   end,
		Status:    status,
	}
	if err := s.repo.CreateEvent(ctx, &e); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.log.Info().Str("event", name).Str("date", date).Msg("event created")
	return &e, nil
}

func (s *AdminService) ListEvents(ctx context.Context, status string) ([]repository.Event, error) {
	if status != "" && !eventStatuses[status] {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.repo.ListEvents(ctx, status)
}

func (s *AdminService) GetEvent(ctx context.Context, id uuid.UUID) (*repository.Event, error) {
	e, err := s.repo.GetEvent(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: event %s", ErrNotFound, id)
	}
	return e, err
}

func (s *AdminService) UpdateEventStatus(ctx context.Context, id uuid.UUID, status string) (*repository.Event, error) {
	if !eventStatuses[status] {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	err := s.repo.UpdateEventStatus(ctx, id, status)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: event %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return s.GetEvent(ctx, id)
}

func (s *AdminService) AddEventGuestVehicle(ctx context.Context, eventID uuid.UUID, plate, name, reason, addedBy string) (*repository.EventGuestVehicle, error) {
	plate = utils.NormalizePlate(plate)
	if plate == "" {
		return nil, fmt.Errorf("%w: plate_number is required", ErrInvalidInput)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	v := repository.EventGuestVehicle{
		EventID:     eventID,
		PlateNumber: plate,
		Name:        name,
	}
	if reason != "" {
		v.Reason = &reason
	}
	if addedBy != "" {
		v.AddedBy = &addedBy
	}
	if err := s.repo.AddEventGuestVehicle(ctx, &v); err != nil {
		return nil, fmt.Errorf("add event guest vehicle: %w", err)
	}

	s.log.Info().Str("plate", plate).Str("event_id", eventID.String()).Msg("event guest vehicle added")
	return &v, nil
}

func (s *AdminService) ListEventGuestVehicles(ctx context.Context, eventID uuid.UUID) ([]repository.EventGuestVehicle, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListEventGuestVehicles(ctx, eventID)
}

func (s *AdminService) RemoveEventGuestVehicle(ctx context.Context, eventID uuid.UUID, plate string) error {
	err := s.repo.RemoveEventGuestVehicle(ctx, eventID, utils.NormalizePlate(plate))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: plate %s on event %s", ErrNotFound, plate, eventID)
	}
	return err
}

// normalizeTimeOfDay accepts HH:MM or HH:MM:SS and stores the long
// form so string comparison against time(now) stays correct.
func normalizeTimeOfDay(s string) (string, error) {
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t.Format("15:04:05"), nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return "", err
	}
	return t.Format("15:04:05"), nil
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vehicle-access-service/internal/repository"
)

func newAdminService(t *testing.T) (*AdminService, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewAdminService(repository.NewAccessRepository(gdb), zerolog.Nop()), mock
}

func TestAddAuthorizedVehicleValidation(t *testing.T) {
	svc, _ := newAdminService(t)

	_, err := svc.AddAuthorizedVehicle(context.Background(), "", "Jordan Doe", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddAuthorizedVehicle(context.Background(), "ABC-1234", "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddAuthorizedVehicleDuplicate(t *testing.T) {
	svc, mock := newAdminService(t)

	rows := sqlmock.NewRows([]string{"id", "plate_number", "owner_name", "contact_info", "created_at"}).
		AddRow(int64(1), "ABC-1234", "Jordan Doe", nil, time.Now())
	mock.ExpectQuery(`SELECT (.+) FROM "authorized_vehicles"`).WillReturnRows(rows)

	_, err := svc.AddAuthorizedVehicle(context.Background(), "abc-1234", "Sam Lee", "")
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddGuestVehicleWindowValidation(t *testing.T) {
	svc, _ := newAdminService(t)

	from := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// valid_from after valid_until is rejected at the boundary.
	_, err := svc.AddGuestVehicle(context.Background(), "GST-0001", "Sam Lee", "", from, until, "admin")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddGuestVehicle(context.Background(), "GST-0001", "Sam Lee", "", time.Time{}, until, "admin")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateEventValidation(t *testing.T) {
	svc, _ := newAdminService(t)
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, "", "2024-06-01", "09:00", "17:00", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateEvent(ctx, "Open Day", "June 1st", "09:00", "17:00", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateEvent(ctx, "Open Day", "2024-06-01", "25:00", "17:00", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateEvent(ctx, "Open Day", "2024-06-01", "17:00", "09:00", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateEvent(ctx, "Open Day", "2024-06-01", "09:00", "17:00", "cancelled")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateEventNormalizesTimes(t *testing.T) {
	svc, mock := newAdminService(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "events"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	e, err := svc.CreateEvent(context.Background(), "Open Day", "2024-06-01", "09:00", "17:00", "")
	require.NoError(t, err)
	assert.Equal(t, "09:00:00", e.StartTime)
	assert.Equal(t, "17:00:00", e.EndTime)
	assert.Equal(t, "scheduled", e.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEventStatusValidation(t *testing.T) {
	svc, _ := newAdminService(t)

	_, err := svc.UpdateEventStatus(context.Background(), uuid.New(), "finished")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

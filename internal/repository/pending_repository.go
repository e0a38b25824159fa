package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"vehicle-access-service/internal/domain/access"
)

// PendingApproval persists a manual-approval request so a restart of
// the dashboard does not lose vehicles awaiting a decision. Keyed by
// id (plate plus detection time are not unique).
type PendingApproval struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	PlateNumber string    `gorm:"not null"`
	DetectedAt  time.Time `gorm:"not null"`
	CreatedAt   time.Time
}

func (r *AccessRepository) AddPending(ctx context.Context, p access.PendingApproval) error {
	row := PendingApproval{
		ID:          p.ID,
		PlateNumber: p.PlateNumber,
		DetectedAt:  p.Timestamp,
		CreatedAt:   time.Now(),
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	// The broker is at-least-once: a redelivered request reuses the id,
	// and re-inserting it must read as already enqueued, not an error.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&row).Error
}

func (r *AccessRepository) ListPending(ctx context.Context) ([]access.PendingApproval, error) {
	var rows []PendingApproval
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]access.PendingApproval, 0, len(rows))
	for _, row := range rows {
		out = append(out, access.PendingApproval{
			ID:          row.ID,
			PlateNumber: row.PlateNumber,
			Timestamp:   row.DetectedAt,
		})
	}
	return out, nil
}

// RemovePendingByPlate deletes every record for the plate and returns
// the removed records so the caller can publish one terminal result
// per record.
func (r *AccessRepository) RemovePendingByPlate(ctx context.Context, plate string) ([]access.PendingApproval, error) {
	var rows []PendingApproval
	if err := r.db.WithContext(ctx).Where("plate_number = ?", plate).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if err := r.db.WithContext(ctx).Where("plate_number = ?", plate).Delete(&PendingApproval{}).Error; err != nil {
		return nil, err
	}
	out := make([]access.PendingApproval, 0, len(rows))
	for _, row := range rows {
		out = append(out, access.PendingApproval{
			ID:          row.ID,
			PlateNumber: row.PlateNumber,
			Timestamp:   row.DetectedAt,
		})
	}
	return out, nil
}

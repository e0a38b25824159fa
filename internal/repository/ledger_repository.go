package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type VehicleLog struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	PlateNumber   string    `gorm:"not null" json:"plate_number"`
	Status        string    `gorm:"not null" json:"status"`
	SecurityClear bool      `gorm:"not null" json:"security_clear"`
	CreatedAt     time.Time `json:"created_at"`
}

type SurveillanceAlert struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Type             string         `gorm:"not null" json:"type"`
	Label            *string        `json:"label,omitempty"`
	Confidence       *float64       `json:"confidence,omitempty"`
	Location         *string        `json:"location,omitempty"`
	Status           string         `gorm:"not null" json:"status"`
	TeamDispatched   bool           `gorm:"not null" json:"team_dispatched"`
	TeamDispatchTime *time.Time     `json:"team_dispatch_time,omitempty"`
	ResolutionTime   *time.Time     `json:"resolution_time,omitempty"`
	Details          datatypes.JSON `json:"details,omitempty"`
	Timestamp        time.Time      `gorm:"not null" json:"timestamp"`
	CreatedAt        time.Time      `json:"created_at"`
}

// AlertUpdate carries the mutable alert fields. Nil means untouched.
type AlertUpdate struct {
	Status         *string `json:"status,omitempty"`
	TeamDispatched *bool   `json:"team_dispatched,omitempty"`
}

func (r *AccessRepository) AppendVehicleLog(ctx context.Context, plate, status string, securityClear bool) error {
	entry := VehicleLog{
		PlateNumber:   plate,
		Status:        status,
		SecurityClear: securityClear,
		CreatedAt:     time.Now(),
	}
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *AccessRepository) ListVehicleLogs(ctx context.Context, plate string) ([]VehicleLog, error) {
	q := r.db.WithContext(ctx).Model(&VehicleLog{}).Order("created_at DESC")
	if plate != "" {
		q = q.Where("plate_number = ?", plate)
	}
	var out []VehicleLog
	err := q.Find(&out).Error
	return out, err
}

func (r *AccessRepository) AppendAlert(ctx context.Context, a *SurveillanceAlert) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = "new"
	}
	a.CreatedAt = time.Now()
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AccessRepository) ListAlerts(ctx context.Context, status string) ([]SurveillanceAlert, error) {
	q := r.db.WithContext(ctx).Model(&SurveillanceAlert{}).Order("timestamp DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []SurveillanceAlert
	err := q.Find(&out).Error
	return out, err
}

func (r *AccessRepository) GetAlert(ctx context.Context, id uuid.UUID) (*SurveillanceAlert, error) {
	var a SurveillanceAlert
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAlert applies the patch and stamps resolution_time when the
// alert is resolved, team_dispatch_time when a team is dispatched.
func (r *AccessRepository) UpdateAlert(ctx context.Context, id uuid.UUID, update AlertUpdate) (*SurveillanceAlert, error) {
	fields := map[string]interface{}{}
	now := time.Now()

	if update.Status != nil {
		fields["status"] = *update.Status
		if *update.Status == "resolved" {
			fields["resolution_time"] = now
		}
	}
	if update.TeamDispatched != nil {
		fields["team_dispatched"] = *update.TeamDispatched
		if *update.TeamDispatched {
			fields["team_dispatch_time"] = now
		}
	}

	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&SurveillanceAlert{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}

	return r.GetAlert(ctx, id)
}

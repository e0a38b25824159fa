package access

import (
	"time"

	"github.com/google/uuid"
)

// Queue names shared by all services. Every queue is a durable,
// at-least-once, FIFO stream on the broker.
const (
	QueueVehicleDetected     = "vehicle_detected"
	QueueManualApproval      = "manual_approval_requests"
	QueueAuthorizationResult = "vehicle.authorization.result"
	QueueSurveillanceAlerts  = "surveillance.alerts"
)

// Terminal statuses carried on the result queue.
const (
	StatusEntered             = "entered"
	StatusManuallyApproved    = "manually approved"
	StatusUnauthorizedChecked = "unauthorized_checked"
)

// DetectionEvent is one physical plate sighting. It exists only on the
// wire between the detector and the authorizer.
type DetectionEvent struct {
	PlateNumber string    `json:"plate_number"`
	Timestamp   time.Time `json:"timestamp"`
}

// AuthorizationResult is the terminal artifact of the pipeline.
// Automated grants set IsAuthorized; manual decisions set Status.
type AuthorizationResult struct {
	PlateNumber   string    `json:"plate_number"`
	Status        string    `json:"status,omitempty"`
	IsAuthorized  bool      `json:"is_authorized"`
	SecurityClear bool      `json:"security_clear"`
	Timestamp     time.Time `json:"timestamp"`
}

// PendingApproval is a vehicle parked in front of a human decision.
// Multiple records may share a plate number.
type PendingApproval struct {
	ID          uuid.UUID `json:"id"`
	PlateNumber string    `json:"plate_number"`
	Timestamp   time.Time `json:"timestamp"`
}

// AlertEvent is the surveillance-alert queue payload. Motion alerts
// carry no label or confidence, so both are optional; confidence is a
// pointer because 0.0 is a legal reported value.
type AlertEvent struct {
	Type       string                 `json:"type"`
	Label      string                 `json:"label,omitempty"`
	Confidence *float64               `json:"confidence,omitempty"`
	Location   string                 `json:"location"`
	Timestamp  time.Time              `json:"timestamp,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Tier identifies which authorization rule matched a plate.
type Tier string

const (
	TierAllowlist Tier = "allowlist"
	TierGuestPass Tier = "guest_pass"
	TierEvent     Tier = "event"
	TierNone      Tier = "none"
)

// Decision is the evaluator's verdict for a single plate at a single
// point in time.
type Decision struct {
	Authorized bool `json:"authorized"`
	Tier       Tier `json:"tier"`
}

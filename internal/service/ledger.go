package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"vehicle-access-service/internal/domain/access"
	"vehicle-access-service/internal/queue"
	"vehicle-access-service/internal/repository"
)

// LedgerWriter is the append side of the persistent log.
type LedgerWriter interface {
	AppendVehicleLog(ctx context.Context, plate, status string, securityClear bool) error
	AppendAlert(ctx context.Context, a *repository.SurveillanceAlert) error
}

// Ledger ingests terminal authorization results and surveillance
// alerts into append-only logs. Appends are fire-and-forget: a failed
// insert is logged and the message acked anyway, so the queues never
// back up behind a dead store.
type Ledger struct {
	writer LedgerWriter
	now    func() time.Time
	log    zerolog.Logger
}

func NewLedger(writer LedgerWriter, log zerolog.Logger) *Ledger {
	return &Ledger{writer: writer, now: time.Now, log: log}
}

// Run starts both consume loops. The result and alert queues are
// independent; there is no ordering guarantee between them.
func (l *Ledger) Run(ctx context.Context, consumer queue.Consumer) error {
	if err := consumer.Consume(ctx, access.QueueAuthorizationResult, l.HandleResult); err != nil {
		return err
	}
	return consumer.Consume(ctx, access.QueueSurveillanceAlerts, l.HandleAlert)
}

func (l *Ledger) HandleResult(ctx context.Context, data []byte) error {
	var result access.AuthorizationResult
	if err := json.Unmarshal(data, &result); err != nil {
		l.log.Error().Err(err).Str("payload", string(data)).Msg("dropping malformed authorization result")
		return nil
	}

	status := result.Status
	if result.IsAuthorized {
		status = access.StatusEntered
	}

	if err := l.writer.AppendVehicleLog(ctx, result.PlateNumber, status, result.SecurityClear); err != nil {
		l.log.Error().Err(err).Str("plate", result.PlateNumber).Msg("failed to append vehicle log")
		return nil
	}

	l.log.Info().
		Str("plate", result.PlateNumber).
		Str("status", status).
		Bool("security_clear", result.SecurityClear).
		Msg("vehicle log appended")
	return nil
}

func (l *Ledger) HandleAlert(ctx context.Context, data []byte) error {
	var event access.AlertEvent
	if err := json.Unmarshal(data, &event); err != nil {
		l.log.Error().Err(err).Str("payload", string(data)).Msg("dropping malformed alert")
		return nil
	}

	alert := repository.SurveillanceAlert{
		Type:      event.Type,
		Timestamp: l.now(),
	}
	if event.Label != "" {
		alert.Label = &event.Label
	}
	alert.Confidence = event.Confidence
	if event.Location != "" {
		alert.Location = &event.Location
	}
	if len(event.Details) > 0 {
		if raw, err := json.Marshal(event.Details); err == nil {
			alert.Details = datatypes.JSON(raw)
		}
	}

	if err := l.writer.AppendAlert(ctx, &alert); err != nil {
		l.log.Error().Err(err).Str("type", event.Type).Msg("failed to append surveillance alert")
		return nil
	}

	l.log.Info().Str("type", event.Type).Str("location", event.Location).Msg("surveillance alert appended")
	return nil
}

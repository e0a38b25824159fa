package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vehicle-access-service/internal/domain/access"
	"vehicle-access-service/internal/metrics"
	"vehicle-access-service/internal/queue"
	"vehicle-access-service/internal/utils"
)

// Engine is the authorization engine: one detection in, one message
// out. It holds no state across messages; ordering comes from the
// broker delivering one message at a time.
type Engine struct {
	evaluator *Evaluator
	pub       queue.Publisher
	now       func() time.Time
	log       zerolog.Logger
}

func NewEngine(evaluator *Evaluator, pub queue.Publisher, log zerolog.Logger) *Engine {
	return &Engine{
		evaluator: evaluator,
		pub:       pub,
		now:       time.Now,
		log:       log,
	}
}

// Run binds the engine to the detection queue.
func (e *Engine) Run(ctx context.Context, consumer queue.Consumer) error {
	return consumer.Consume(ctx, access.QueueVehicleDetected, e.HandleDetection)
}

// HandleDetection evaluates one detection with wall-clock now, not the
// detection timestamp: a pass that expires between sighting and
// evaluation no longer grants entry. A returned error leaves the
// message un-acked for redelivery; publish failures therefore never
// silently drop a detection.
func (e *Engine) HandleDetection(ctx context.Context, data []byte) error {
	var detection access.DetectionEvent
	if err := json.Unmarshal(data, &detection); err != nil {
		// A payload that can never parse would redeliver forever.
		e.log.Error().Err(err).Str("payload", string(data)).Msg("dropping malformed detection")
		return nil
	}

	// External producers publish detections directly to the queue, so
	// normalization cannot be left to the HTTP ingress alone.
	plate := utils.NormalizePlate(detection.PlateNumber)

	decision, err := e.evaluator.Evaluate(ctx, plate, e.now())
	if err != nil {
		// Fail closed: an unreachable store must not grant access, and
		// must not wedge the queue either. Route to manual review.
		e.log.Error().Err(err).Str("plate", plate).Msg("evaluation failed, routing to manual review")
		decision = access.Decision{Authorized: false, Tier: access.TierNone}
	}

	if decision.Authorized {
		result := access.AuthorizationResult{
			PlateNumber:   plate,
			IsAuthorized:  true,
			SecurityClear: true,
			Timestamp:     detection.Timestamp,
		}
		if err := e.pub.Publish(ctx, access.QueueAuthorizationResult, result); err != nil {
			return fmt.Errorf("publish authorization result: %w", err)
		}
		metrics.Decisions.WithLabelValues("authorized").Inc()
		e.log.Info().
			Str("plate", plate).
			Str("tier", string(decision.Tier)).
			Msg("vehicle authorized")
		return nil
	}

	pending := access.PendingApproval{
		ID:          uuid.New(),
		PlateNumber: plate,
		Timestamp:   detection.Timestamp,
	}
	if err := e.pub.Publish(ctx, access.QueueManualApproval, pending); err != nil {
		return fmt.Errorf("publish manual approval request: %w", err)
	}
	metrics.Decisions.WithLabelValues("manual_review").Inc()
	e.log.Info().Str("plate", plate).Msg("vehicle routed to manual review")
	return nil
}

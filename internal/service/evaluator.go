package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"vehicle-access-service/internal/domain/access"
	"vehicle-access-service/internal/repository"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// AccessReader is the read-only store view the evaluator needs. All
// three lookups return nil when nothing matches; an error means the
// lookup itself failed, which callers must treat as fail-closed.
type AccessReader interface {
	GetAuthorizedVehicle(ctx context.Context, plate string) (*repository.AuthorizedVehicle, error)
	FindActiveGuestPass(ctx context.Context, plate string, now time.Time) (*repository.GuestVehicle, error)
	FindActiveEventVehicle(ctx context.Context, plate, date, timeOfDay string) (*repository.EventGuestVehicle, error)
}

// Evaluator decides the authorization tier for a plate at a point in
// time. Pure logic over read-only lookups, no other I/O.
type Evaluator struct {
	reader AccessReader
	log    zerolog.Logger
}

func NewEvaluator(reader AccessReader, log zerolog.Logger) *Evaluator {
	return &Evaluator{reader: reader, log: log}
}

// Evaluate walks the tiers in strict priority order, short-circuiting
// on the first match: allowlist, then guest pass, then active event.
func (e *Evaluator) Evaluate(ctx context.Context, plate string, now time.Time) (access.Decision, error) {
	vehicle, err := e.reader.GetAuthorizedVehicle(ctx, plate)
	if err != nil {
		return access.Decision{}, fmt.Errorf("allowlist lookup: %w", err)
	}
	if vehicle != nil {
		return access.Decision{Authorized: true, Tier: access.TierAllowlist}, nil
	}

	pass, err := e.reader.FindActiveGuestPass(ctx, plate, now)
	if err != nil {
		return access.Decision{}, fmt.Errorf("guest pass lookup: %w", err)
	}
	if pass != nil {
		return access.Decision{Authorized: true, Tier: access.TierGuestPass}, nil
	}

	guest, err := e.reader.FindActiveEventVehicle(ctx, plate, now.Format("2006-01-02"), now.Format("15:04:05"))
	if err != nil {
		return access.Decision{}, fmt.Errorf("event lookup: %w", err)
	}
	if guest != nil {
		return access.Decision{Authorized: true, Tier: access.TierEvent}, nil
	}

	return access.Decision{Authorized: false, Tier: access.TierNone}, nil
}

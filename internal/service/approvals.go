package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vehicle-access-service/internal/domain/access"
	"vehicle-access-service/internal/queue"
)

// PendingStore holds vehicles awaiting a human decision. Records are
// keyed by id; several records may share a plate number.
type PendingStore interface {
	AddPending(ctx context.Context, p access.PendingApproval) error
	ListPending(ctx context.Context) ([]access.PendingApproval, error)
	RemovePendingByPlate(ctx context.Context, plate string) ([]access.PendingApproval, error)
}

// MemoryPendingStore keeps pending approvals in process memory. The
// postgres-backed store in the repository package is the durable
// default; this one backs tests and single-node setups.
type MemoryPendingStore struct {
	mu      sync.Mutex
	records []access.PendingApproval
}

func NewMemoryPendingStore() *MemoryPendingStore {
	return &MemoryPendingStore{}
}

func (s *MemoryPendingStore) AddPending(_ context.Context, p access.PendingApproval) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	// Redelivered approval requests carry the same id; enqueue once.
	for _, r := range s.records {
		if r.ID == p.ID {
			return nil
		}
	}
	s.records = append(s.records, p)
	return nil
}

func (s *MemoryPendingStore) ListPending(_ context.Context) ([]access.PendingApproval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]access.PendingApproval, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *MemoryPendingStore) RemovePendingByPlate(_ context.Context, plate string) ([]access.PendingApproval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed, kept []access.PendingApproval
	for _, r := range s.records {
		if r.PlateNumber == plate {
			removed = append(removed, r)
		} else {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return removed, nil
}

// ApprovalService is the manual approval store: the only bridge
// between fail-closed routing and a terminal decision. Enqueue,
// approve and decline all run under one mutex so a concurrent approve
// and enqueue cannot interleave their read-then-write sequences.
type ApprovalService struct {
	mu    sync.Mutex
	store PendingStore
	pub   queue.Publisher
	log   zerolog.Logger
}

func NewApprovalService(store PendingStore, pub queue.Publisher, log zerolog.Logger) *ApprovalService {
	return &ApprovalService{store: store, pub: pub, log: log}
}

// Run binds the enqueue side to the manual-approval queue.
func (s *ApprovalService) Run(ctx context.Context, consumer queue.Consumer) error {
	return consumer.Consume(ctx, access.QueueManualApproval, s.HandleRequest)
}

func (s *ApprovalService) HandleRequest(ctx context.Context, data []byte) error {
	var p access.PendingApproval
	if err := json.Unmarshal(data, &p); err != nil {
		s.log.Error().Err(err).Str("payload", string(data)).Msg("dropping malformed approval request")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.AddPending(ctx, p); err != nil {
		return fmt.Errorf("enqueue pending approval: %w", err)
	}
	s.log.Info().Str("plate", p.PlateNumber).Msg("vehicle pending manual approval")
	return nil
}

func (s *ApprovalService) ListPending(ctx context.Context) ([]access.PendingApproval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ListPending(ctx)
}

// Approve removes every pending record for the plate and publishes
// one terminal result per removed record, each carrying that record's
// detection timestamp. Returns the number of records decided.
func (s *ApprovalService) Approve(ctx context.Context, plate string) (int, error) {
	return s.decide(ctx, plate, access.StatusManuallyApproved, true)
}

// Decline mirrors Approve with security_clear false.
func (s *ApprovalService) Decline(ctx context.Context, plate string) (int, error) {
	return s.decide(ctx, plate, access.StatusUnauthorizedChecked, false)
}

func (s *ApprovalService) decide(ctx context.Context, plate, status string, securityClear bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.store.RemovePendingByPlate(ctx, plate)
	if err != nil {
		return 0, fmt.Errorf("remove pending records: %w", err)
	}
	if len(removed) == 0 {
		return 0, fmt.Errorf("%w: no pending record for plate %s", ErrNotFound, plate)
	}

	for i, record := range removed {
		result := access.AuthorizationResult{
			PlateNumber:   record.PlateNumber,
			Status:        status,
			SecurityClear: securityClear,
			Timestamp:     record.Timestamp,
		}
		if err := s.pub.Publish(ctx, access.QueueAuthorizationResult, result); err != nil {
			// Put the undecided records back so a retry can still reach
			// them; a record that is neither pending nor published would
			// never get a terminal result.
			for _, rest := range removed[i:] {
				if addErr := s.store.AddPending(ctx, rest); addErr != nil {
					s.log.Error().Err(addErr).Str("plate", rest.PlateNumber).Msg("failed to restore pending record")
				}
			}
			return i, fmt.Errorf("publish decision for %s: %w", record.PlateNumber, err)
		}
	}

	s.log.Info().
		Str("plate", plate).
		Str("status", status).
		Int("records", len(removed)).
		Msg("manual decision published")
	return len(removed), nil
}

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-access-service/internal/domain/access"
	"vehicle-access-service/internal/queue"
	"vehicle-access-service/internal/repository"
)

type syncWriter struct {
	mu   sync.Mutex
	logs []repository.VehicleLog
}

func (w *syncWriter) AppendVehicleLog(_ context.Context, plate, status string, securityClear bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.logs = append(w.logs, repository.VehicleLog{PlateNumber: plate, Status: status, SecurityClear: securityClear})
	return nil
}

func (w *syncWriter) AppendAlert(_ context.Context, _ *repository.SurveillanceAlert) error {
	return nil
}

func (w *syncWriter) snapshot() []repository.VehicleLog {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]repository.VehicleLog, len(w.logs))
	copy(out, w.logs)
	return out
}

// Full pipeline walk for a plate with no matching record: detection →
// manual approval queue → operator approve → one terminal result →
// one ledger entry.
func TestPipelineManualApprovalEndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := queue.NewMemory()
	writer := &syncWriter{}

	engine := NewEngine(NewEvaluator(&fakeReader{}, zerolog.Nop()), broker, zerolog.Nop())
	approvals := NewApprovalService(NewMemoryPendingStore(), broker, zerolog.Nop())
	ledger := NewLedger(writer, zerolog.Nop())

	require.NoError(t, engine.Run(ctx, broker))
	require.NoError(t, approvals.Run(ctx, broker))
	require.NoError(t, ledger.Run(ctx, broker))

	detected := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, broker.Publish(ctx, access.QueueVehicleDetected, access.DetectionEvent{
		PlateNumber: "ABC-1234",
		Timestamp:   detected,
	}))

	// The vehicle must surface in the pending list before any result exists.
	require.Eventually(t, func() bool {
		pending, err := approvals.ListPending(ctx)
		return err == nil && len(pending) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, broker.Published(access.QueueAuthorizationResult))

	count, err := approvals.Approve(ctx, "ABC-1234")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Eventually(t, func() bool {
		return len(writer.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	entry := writer.snapshot()[0]
	assert.Equal(t, "ABC-1234", entry.PlateNumber)
	assert.Equal(t, access.StatusManuallyApproved, entry.Status)
	assert.True(t, entry.SecurityClear)

	results := broker.Published(access.QueueAuthorizationResult)
	assert.Len(t, results, 1)

	pending, err := approvals.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

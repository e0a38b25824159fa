package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-access-service/internal/domain/access"
	"vehicle-access-service/internal/repository"
)

type recordingWriter struct {
	logs    []repository.VehicleLog
	alerts  []repository.SurveillanceAlert
	failure error
}

func (w *recordingWriter) AppendVehicleLog(_ context.Context, plate, status string, securityClear bool) error {
	if w.failure != nil {
		return w.failure
	}
	w.logs = append(w.logs, repository.VehicleLog{PlateNumber: plate, Status: status, SecurityClear: securityClear})
	return nil
}

func (w *recordingWriter) AppendAlert(_ context.Context, a *repository.SurveillanceAlert) error {
	if w.failure != nil {
		return w.failure
	}
	w.alerts = append(w.alerts, *a)
	return nil
}

func resultPayload(t *testing.T, r access.AuthorizationResult) []byte {
	t.Helper()
	data, err := json.Marshal(r)
	require.NoError(t, err)
	return data
}

func TestHandleResultAutomatedGrantLogsEntered(t *testing.T) {
	w := &recordingWriter{}
	ledger := NewLedger(w, zerolog.Nop())

	payload := resultPayload(t, access.AuthorizationResult{
		PlateNumber:   "ABC-1234",
		IsAuthorized:  true,
		SecurityClear: true,
		Timestamp:     time.Now(),
	})
	require.NoError(t, ledger.HandleResult(context.Background(), payload))

	require.Len(t, w.logs, 1)
	assert.Equal(t, access.StatusEntered, w.logs[0].Status)
	assert.True(t, w.logs[0].SecurityClear)
}

func TestHandleResultManualDecisionMapsThrough(t *testing.T) {
	w := &recordingWriter{}
	ledger := NewLedger(w, zerolog.Nop())

	approve := resultPayload(t, access.AuthorizationResult{
		PlateNumber:   "ABC-1234",
		Status:        access.StatusManuallyApproved,
		SecurityClear: true,
	})
	decline := resultPayload(t, access.AuthorizationResult{
		PlateNumber:   "XYZ-0000",
		Status:        access.StatusUnauthorizedChecked,
		SecurityClear: false,
	})
	require.NoError(t, ledger.HandleResult(context.Background(), approve))
	require.NoError(t, ledger.HandleResult(context.Background(), decline))

	require.Len(t, w.logs, 2)
	assert.Equal(t, access.StatusManuallyApproved, w.logs[0].Status)
	assert.True(t, w.logs[0].SecurityClear)
	assert.Equal(t, access.StatusUnauthorizedChecked, w.logs[1].Status)
	assert.False(t, w.logs[1].SecurityClear)
}

// A failed append is logged and the message acked anyway; the ledger
// never backs the result queue up behind a dead store.
func TestHandleResultPersistFailureStillAcks(t *testing.T) {
	w := &recordingWriter{failure: errors.New("store down")}
	ledger := NewLedger(w, zerolog.Nop())

	payload := resultPayload(t, access.AuthorizationResult{PlateNumber: "ABC-1234", IsAuthorized: true})
	assert.NoError(t, ledger.HandleResult(context.Background(), payload))
}

func TestHandleAlertStampsIngestTime(t *testing.T) {
	w := &recordingWriter{}
	ledger := NewLedger(w, zerolog.Nop())
	ingest := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ledger.now = func() time.Time { return ingest }

	confidence := 0.92
	event := access.AlertEvent{
		Type:       "suspicious_activity",
		Label:      "person",
		Confidence: &confidence,
		Location:   "Gate A",
		Timestamp:  ingest.Add(-time.Minute),
	}
	data, err := json.Marshal(event)
	require.NoError(t, err)
	require.NoError(t, ledger.HandleAlert(context.Background(), data))

	require.Len(t, w.alerts, 1)
	a := w.alerts[0]
	assert.Equal(t, "suspicious_activity", a.Type)
	require.NotNil(t, a.Label)
	assert.Equal(t, "person", *a.Label)
	require.NotNil(t, a.Confidence)
	assert.InDelta(t, 0.92, *a.Confidence, 1e-9)
	require.NotNil(t, a.Location)
	assert.Equal(t, "Gate A", *a.Location)
	// The stored timestamp is ingest time, not the producer's.
	assert.True(t, a.Timestamp.Equal(ingest))
}

func TestHandleAlertWithoutOptionalFields(t *testing.T) {
	w := &recordingWriter{}
	ledger := NewLedger(w, zerolog.Nop())

	data, err := json.Marshal(access.AlertEvent{Type: "motion_after_hours", Location: "Zone B"})
	require.NoError(t, err)
	require.NoError(t, ledger.HandleAlert(context.Background(), data))

	require.Len(t, w.alerts, 1)
	assert.Nil(t, w.alerts[0].Label)
	assert.Nil(t, w.alerts[0].Confidence)
}

// A reported confidence of exactly 0.0 is a value, not an absent field.
func TestHandleAlertKeepsZeroConfidence(t *testing.T) {
	w := &recordingWriter{}
	ledger := NewLedger(w, zerolog.Nop())

	confidence := 0.0
	data, err := json.Marshal(access.AlertEvent{
		Type:       "suspicious_activity",
		Label:      "unknown",
		Confidence: &confidence,
		Location:   "Zone C",
	})
	require.NoError(t, err)
	require.NoError(t, ledger.HandleAlert(context.Background(), data))

	require.Len(t, w.alerts, 1)
	require.NotNil(t, w.alerts[0].Confidence)
	assert.Zero(t, *w.alerts[0].Confidence)
}

func TestHandleAlertDropsMalformedPayload(t *testing.T) {
	w := &recordingWriter{}
	ledger := NewLedger(w, zerolog.Nop())

	assert.NoError(t, ledger.HandleAlert(context.Background(), []byte("{broken")))
	assert.Empty(t, w.alerts)
}

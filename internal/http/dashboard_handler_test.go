package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-access-service/internal/domain/access"
	"vehicle-access-service/internal/queue"
	"vehicle-access-service/internal/service"
)

func newDashboard(t *testing.T) (*gin.Engine, *service.ApprovalService, *queue.Memory) {
	t.Helper()
	broker := queue.NewMemory()
	approvals := service.NewApprovalService(service.NewMemoryPendingStore(), broker, zerolog.Nop())

	r := NewRouter("dashboard")
	NewDashboardHandler(approvals, nil, zerolog.Nop()).Register(r, JWTAuth("test-secret"))
	return r, approvals, broker
}

func seedPending(t *testing.T, approvals *service.ApprovalService, plate string) {
	t.Helper()
	data, err := json.Marshal(access.PendingApproval{PlateNumber: plate, Timestamp: time.Now()})
	require.NoError(t, err)
	require.NoError(t, approvals.HandleRequest(context.Background(), data))
}

func TestListPendingVehicles(t *testing.T) {
	r, approvals, _ := newDashboard(t)
	seedPending(t, approvals, "ABC-1234")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pending-vehicles", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []access.PendingApproval `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "ABC-1234", resp.Data[0].PlateNumber)
}

func TestApproveEndpoint(t *testing.T) {
	r, approvals, broker := newDashboard(t)
	seedPending(t, approvals, "ABC-1234")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/approve/abc-1234", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, broker.Published(access.QueueAuthorizationResult), 1)

	// A second approve is a no-op on an empty store.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/approve/abc-1234", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeclineEndpoint(t *testing.T) {
	r, approvals, broker := newDashboard(t)
	seedPending(t, approvals, "XYZ-0000")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/decline/XYZ-0000", nil))

	require.Equal(t, http.StatusOK, w.Code)
	results := broker.Published(access.QueueAuthorizationResult)
	require.Len(t, results, 1)
	var result access.AuthorizationResult
	require.NoError(t, json.Unmarshal(results[0], &result))
	assert.Equal(t, access.StatusUnauthorizedChecked, result.Status)
	assert.False(t, result.SecurityClear)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r, _, _ := newDashboard(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "operator",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	r := NewRouter("dashboard")
	group := r.Group("/api/v1")
	group.Use(JWTAuth("test-secret"))
	group.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthDisabledWithoutSecret(t *testing.T) {
	r := NewRouter("dashboard")
	group := r.Group("/api/v1")
	group.Use(JWTAuth(""))
	group.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

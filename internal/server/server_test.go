package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/parcelforge/shipping/internal/server"
	"github.com/parcelforge/shipping/pkg/shipping"
	"github.com/parcelforge/shipping/pkg/shipping/mock"
)

var (
	handlerOnce sync.Once
	handler     http.Handler
)

// newTestHandler builds the route table once; server.New registers
// Prometheus collectors and the default registry rejects duplicates.
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	handlerOnce.Do(func() {
		logger := otelzap.New(zap.NewNop())
		registry := shipping.NewRegistry()
		registry.Register(shipping.CarrierFedEx, func() shipping.Carrier {
			return mock.New(shipping.CarrierFedEx)
		})
		registry.Register(shipping.CarrierUPS, func() shipping.Carrier {
			return mock.New(shipping.CarrierUPS)
		})

		handler = server.New(server.Config{Port: 8080}, registry, logger).Handler()
	})
	return handler
}

func TestServer_Health(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_Carriers(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/carriers", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Carriers []string `json:"carriers"`
	}
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, []string{"fedex", "ups"}, resp.Carriers)
}

func TestServer_Metrics_RecordsRequests(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `parcelforge_requests_total{carrier="",operation="health",status="200"}`)
	assert.Contains(t, body, "parcelforge_request_duration_seconds")
}

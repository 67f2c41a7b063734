package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerMetricsDisabled(t *testing.T) {
	// The registry is never initialized in this package's tests
	srv := NewServer(ServerConfig{})
	assert.Equal(t, 9090, srv.Port())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "disabled")
}

func TestNoopOperatorMetrics(t *testing.T) {
	m := NewNoopOperatorMetrics()
	assert.NotPanics(t, func() {
		m.ObserveOperation("s3", "stat", 0, nil)
		m.RecordBytes("s3", "read", 10)
	})
}

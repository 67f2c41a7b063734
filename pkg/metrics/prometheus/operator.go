// Package prometheus contains the Prometheus-backed metrics implementations.
package prometheus

import (
	"sync"
	"time"

	"github.com/marmos91/filesetfs/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// operatorMetrics is the Prometheus implementation of metrics.OperatorMetrics.
type operatorMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTransferred  *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
}

var (
	sharedOperatorMetrics metrics.OperatorMetrics
	operatorMetricsOnce   sync.Once
)

// NewOperatorMetrics returns the Prometheus-backed OperatorMetrics.
//
// Returns a no-op implementation if metrics are not enabled (InitRegistry not
// called). Collectors are registered once; every call returns the same
// instance so several backends can share the registry.
func NewOperatorMetrics() metrics.OperatorMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopOperatorMetrics()
	}

	operatorMetricsOnce.Do(func() {
		sharedOperatorMetrics = newOperatorMetrics(metrics.GetRegistry())
	})
	return sharedOperatorMetrics
}

func newOperatorMetrics(reg prometheus.Registerer) *operatorMetrics {
	return &operatorMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "filesetfs_operator_operations_total",
				Help: "Total number of storage operator calls by scheme, operation and status",
			},
			[]string{"scheme", "operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "filesetfs_operator_operation_duration_seconds",
				Help: "Duration of storage operator calls in seconds",
				Buckets: []float64{
					0.001, // 1ms
					0.01,  // 10ms
					0.05,  // 50ms
					0.1,   // 100ms
					0.5,   // 500ms
					1.0,   // 1s
					5.0,   // 5s
					30.0,  // 30s
				},
			},
			[]string{"scheme", "operation"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "filesetfs_operator_bytes_total",
				Help: "Total payload bytes moved by storage operators",
			},
			[]string{"scheme", "direction"},
		),
		errorsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "filesetfs_operator_errors_total",
				Help: "Total number of failed storage operator calls",
			},
			[]string{"scheme", "operation"},
		),
	}
}

func (m *operatorMetrics) ObserveOperation(scheme, operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		m.errorsTotal.WithLabelValues(scheme, operation).Inc()
	}

	m.operationsTotal.WithLabelValues(scheme, operation, status).Inc()
	m.operationDuration.WithLabelValues(scheme, operation).Observe(duration.Seconds())
}

func (m *operatorMetrics) RecordBytes(scheme, direction string, bytes int64) {
	if bytes <= 0 {
		return
	}
	m.bytesTransferred.WithLabelValues(scheme, direction).Add(float64(bytes))
}

// Package metrics exposes filesetfs metrics to Prometheus.
//
// Collection is opt-in. Until InitRegistry is called GetRegistry returns nil,
// metric constructors hand out no-op collectors and the metrics server answers
// 503:
//
//	if cfg.Metrics.Enabled {
//	    metrics.InitRegistry()
//	}
//	op = op.Layer(operator.MetricsLayer(prometheus.NewOperatorMetrics()))
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry creates the process-wide registry with the Go runtime and
// process collectors already registered. Calls after the first are no-ops.
func InitRegistry() {
	registryOnce.Do(func() {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		registry = reg
	})
}

// GetRegistry returns the registry, or nil while metrics are disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return GetRegistry() != nil
}

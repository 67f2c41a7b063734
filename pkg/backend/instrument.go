package backend

import (
	"github.com/marmos91/filesetfs/pkg/config"
	"github.com/marmos91/filesetfs/pkg/metrics/prometheus"
	"github.com/marmos91/filesetfs/pkg/operator"
)

// Instrument wraps op with the layers every adapter applies.
//
// From the inside out: per-call timeout, rate limiting, metrics and logging.
// Timeout and rate limiting come from cfg.Filesystem and are skipped when
// unset; metrics are recorded only when the registry was initialized. A nil
// cfg applies logging alone.
func Instrument(op *operator.Operator, cfg *config.AppConfig) *operator.Operator {
	if cfg != nil {
		op = op.
			Layer(operator.TimeoutLayer(cfg.Filesystem.OperationTimeout)).
			Layer(operator.RateLimitLayer(cfg.Filesystem.RateLimit, cfg.Filesystem.RateBurst)).
			Layer(operator.MetricsLayer(prometheus.NewOperatorMetrics()))
	}
	return op.Layer(operator.LoggingLayer())
}

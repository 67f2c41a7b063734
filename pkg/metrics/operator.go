package metrics

import "time"

// OperatorMetrics collects metrics about storage operator calls.
//
// Implementations must be safe for concurrent use.
type OperatorMetrics interface {
	// ObserveOperation records one operator call.
	//
	// Parameters:
	//   - scheme: backend scheme (s3, memory, badger)
	//   - operation: operator method (stat, list, read, write, create_dir, delete)
	//   - duration: time spent in the call
	//   - err: call result; nil counts as success
	ObserveOperation(scheme, operation string, duration time.Duration, err error)

	// RecordBytes records payload bytes moved in direction "read" or "write".
	RecordBytes(scheme, direction string, bytes int64)
}

type noopOperatorMetrics struct{}

func (noopOperatorMetrics) ObserveOperation(string, string, time.Duration, error) {}
func (noopOperatorMetrics) RecordBytes(string, string, int64)                     {}

// NewNoopOperatorMetrics returns an OperatorMetrics that discards everything.
func NewNoopOperatorMetrics() OperatorMetrics {
	return noopOperatorMetrics{}
}

package operator

import (
	"context"
	"errors"
	"time"

	"github.com/marmos91/filesetfs/internal/logger"
	"github.com/marmos91/filesetfs/internal/ratelimiter"
	"github.com/marmos91/filesetfs/pkg/metrics"
)

// call executes one accessor operation and returns the payload bytes it moved.
type call func(ctx context.Context) (int64, error)

// interceptor runs around every accessor operation.
type interceptor func(ctx context.Context, op, path string, next call) error

// interceptedAccessor routes all Accessor methods through an interceptor.
type interceptedAccessor struct {
	inner  Accessor
	around interceptor
}

func intercept(around interceptor) Layer {
	return func(inner Accessor) Accessor {
		return &interceptedAccessor{inner: inner, around: around}
	}
}

func (a *interceptedAccessor) Info() Info {
	return a.inner.Info()
}

func (a *interceptedAccessor) Stat(ctx context.Context, path string) (Metadata, error) {
	var md Metadata
	err := a.around(ctx, OpStat, path, func(ctx context.Context) (int64, error) {
		var err error
		md, err = a.inner.Stat(ctx, path)
		return 0, err
	})
	return md, err
}

func (a *interceptedAccessor) List(ctx context.Context, path string) ([]Entry, error) {
	var entries []Entry
	err := a.around(ctx, OpList, path, func(ctx context.Context) (int64, error) {
		var err error
		entries, err = a.inner.List(ctx, path)
		return 0, err
	})
	return entries, err
}

func (a *interceptedAccessor) Read(ctx context.Context, path string, offset, size int64) ([]byte, error) {
	var data []byte
	err := a.around(ctx, OpRead, path, func(ctx context.Context) (int64, error) {
		var err error
		data, err = a.inner.Read(ctx, path, offset, size)
		return int64(len(data)), err
	})
	return data, err
}

func (a *interceptedAccessor) Write(ctx context.Context, path string, data []byte) error {
	return a.around(ctx, OpWrite, path, func(ctx context.Context) (int64, error) {
		return int64(len(data)), a.inner.Write(ctx, path, data)
	})
}

func (a *interceptedAccessor) CreateDir(ctx context.Context, path string) error {
	return a.around(ctx, OpCreateDir, path, func(ctx context.Context) (int64, error) {
		return 0, a.inner.CreateDir(ctx, path)
	})
}

func (a *interceptedAccessor) Delete(ctx context.Context, path string) error {
	return a.around(ctx, OpDelete, path, func(ctx context.Context) (int64, error) {
		return 0, a.inner.Delete(ctx, path)
	})
}

// LoggingLayer logs every operation at DEBUG level and failures at WARN.
// NotFound results are expected during lookups and stay at DEBUG.
func LoggingLayer() Layer {
	return func(inner Accessor) Accessor {
		scheme := inner.Info().Scheme
		return &interceptedAccessor{
			inner: inner,
			around: func(ctx context.Context, op, path string, next call) error {
				start := time.Now()
				logger.Debug("operator: %s %s %s started", scheme, op, path)

				n, err := next(ctx)
				elapsed := time.Since(start)

				switch {
				case err == nil:
					logger.Debug("operator: %s %s %s finished in %v (%d bytes)", scheme, op, path, elapsed, n)
				case IsNotFound(err):
					logger.Debug("operator: %s %s %s not found", scheme, op, path)
				default:
					logger.Warn("operator: %s %s %s failed after %v: %v", scheme, op, path, elapsed, err)
				}
				return err
			},
		}
	}
}

// MetricsLayer records every operation in m.
func MetricsLayer(m metrics.OperatorMetrics) Layer {
	if m == nil {
		m = metrics.NewNoopOperatorMetrics()
	}
	return func(inner Accessor) Accessor {
		scheme := inner.Info().Scheme
		return &interceptedAccessor{
			inner: inner,
			around: func(ctx context.Context, op, _ string, next call) error {
				start := time.Now()
				n, err := next(ctx)
				m.ObserveOperation(scheme, op, time.Since(start), err)

				switch op {
				case OpRead:
					m.RecordBytes(scheme, "read", n)
				case OpWrite:
					if err == nil {
						m.RecordBytes(scheme, "write", n)
					}
				}
				return err
			},
		}
	}
}

// TimeoutLayer bounds every operation with timeout. A zero or negative
// timeout returns a layer that changes nothing.
func TimeoutLayer(timeout time.Duration) Layer {
	if timeout <= 0 {
		return func(inner Accessor) Accessor { return inner }
	}
	return intercept(func(ctx context.Context, op, path string, next call) error {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		_, err := next(callCtx)
		// Only deadlines set here are reported as timeouts
		if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return NewError(KindTimeout, op, path, err)
		}
		return err
	})
}

// RateLimitLayer admits at most rps operations per second with the given
// burst. Callers wait for a token; a cancelled wait fails with KindRateLimited.
// A zero or negative rps returns a layer that changes nothing.
func RateLimitLayer(rps float64, burst int) Layer {
	limiter := ratelimiter.New(rps, burst)
	if limiter == nil {
		return func(inner Accessor) Accessor { return inner }
	}

	return intercept(func(ctx context.Context, op, path string, next call) error {
		if err := limiter.Wait(ctx); err != nil {
			return NewError(KindRateLimited, op, path, err)
		}
		_, err := next(ctx)
		return err
	})
}

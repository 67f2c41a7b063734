package operator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	scheme    string
	operation string
	failed    bool
}

type recordingMetrics struct {
	mu    sync.Mutex
	ops   []observation
	bytes map[string]int64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{bytes: make(map[string]int64)}
}

func (m *recordingMetrics) ObserveOperation(scheme, operation string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, observation{scheme: scheme, operation: operation, failed: err != nil})
}

func (m *recordingMetrics) RecordBytes(_ string, direction string, bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bytes[direction] += bytes
}

func TestLoggingLayer_PassesResultsThrough(t *testing.T) {
	ctx := context.Background()
	op := FromAccessor(newStub()).Layer(LoggingLayer())

	require.NoError(t, op.Write(ctx, "f", []byte("abc")))

	data, err := op.ReadAll(ctx, "f")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	_, err = op.Stat(ctx, "missing")
	assert.True(t, IsNotFound(err))

	entries, err := op.List(ctx, "/")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, op.CreateDir(ctx, "d/"))
	require.NoError(t, op.Delete(ctx, "f"))
	assert.Equal(t, "stub", op.Info().Scheme)
}

func TestMetricsLayer(t *testing.T) {
	ctx := context.Background()
	m := newRecordingMetrics()
	stub := newStub()
	op := FromAccessor(stub).Layer(MetricsLayer(m))

	require.NoError(t, op.Write(ctx, "f", []byte("hello")))
	_, err := op.Read(ctx, "f", 1, 3)
	require.NoError(t, err)
	_, err = op.Stat(ctx, "missing")
	require.Error(t, err)

	stub.hook = func(_ context.Context, opName string) error {
		if opName == OpWrite {
			return errors.New("backend down")
		}
		return nil
	}
	require.Error(t, op.Write(ctx, "g", []byte("lost")))

	m.mu.Lock()
	defer m.mu.Unlock()

	require.Len(t, m.ops, 4)
	assert.Equal(t, observation{"stub", OpWrite, false}, m.ops[0])
	assert.Equal(t, observation{"stub", OpRead, false}, m.ops[1])
	assert.Equal(t, observation{"stub", OpStat, true}, m.ops[2])
	assert.Equal(t, observation{"stub", OpWrite, true}, m.ops[3])

	assert.Equal(t, int64(5), m.bytes["write"], "failed writes are not counted")
	assert.Equal(t, int64(3), m.bytes["read"])
}

func TestMetricsLayer_NilUsesNoop(t *testing.T) {
	op := FromAccessor(newStub()).Layer(MetricsLayer(nil))
	assert.NoError(t, op.Write(context.Background(), "f", nil))
}

func TestTimeoutLayer(t *testing.T) {
	t.Run("ZeroIsPassThrough", func(t *testing.T) {
		stub := newStub()
		assert.Same(t, Accessor(stub), TimeoutLayer(0)(stub))
	})

	t.Run("ExpiredDeadlineIsTimeout", func(t *testing.T) {
		stub := newStub()
		stub.hook = func(ctx context.Context, _ string) error {
			<-ctx.Done()
			return ctx.Err()
		}
		op := FromAccessor(stub).Layer(TimeoutLayer(10 * time.Millisecond))

		_, err := op.Stat(context.Background(), "slow")
		require.Error(t, err)
		assert.Equal(t, KindTimeout, KindOf(err))

		var opErr *Error
		require.True(t, errors.As(err, &opErr))
		assert.Equal(t, OpStat, opErr.Op)
		assert.Equal(t, "slow", opErr.Path)
	})

	t.Run("CallerCancellationIsNotTimeout", func(t *testing.T) {
		stub := newStub()
		stub.hook = func(ctx context.Context, _ string) error {
			<-ctx.Done()
			return ctx.Err()
		}
		op := FromAccessor(stub).Layer(TimeoutLayer(time.Minute))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := op.Stat(ctx, "slow")
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, KindUnexpected, KindOf(err))
	})

	t.Run("FastCallsSucceed", func(t *testing.T) {
		op := FromAccessor(newStub()).Layer(TimeoutLayer(time.Second))
		assert.NoError(t, op.Write(context.Background(), "f", []byte("x")))
	})
}

func TestRateLimitLayer(t *testing.T) {
	t.Run("DisabledIsPassThrough", func(t *testing.T) {
		stub := newStub()
		assert.Same(t, Accessor(stub), RateLimitLayer(0, 10)(stub))
	})

	t.Run("BurstIsAdmitted", func(t *testing.T) {
		op := FromAccessor(newStub()).Layer(RateLimitLayer(1, 3))
		ctx := context.Background()

		for range 3 {
			require.NoError(t, op.Write(ctx, "f", nil))
		}
	})

	t.Run("ExhaustedBucketHonoursDeadline", func(t *testing.T) {
		stub := newStub()
		op := FromAccessor(stub).Layer(RateLimitLayer(0.001, 1))

		require.NoError(t, op.Write(context.Background(), "first", nil))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := op.Write(ctx, "second", nil)
		require.Error(t, err)
		assert.Equal(t, KindRateLimited, KindOf(err))
		assert.Equal(t, 1, stub.callCount(), "rejected call must not reach the accessor")
	})
}

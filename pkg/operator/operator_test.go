package operator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		op, err := New(context.Background(), stubBuilder{acc: newStub()})
		require.NoError(t, err)
		assert.Equal(t, "stub", op.Info().Scheme)
	})

	t.Run("BuildErrorIsReturnedUnchanged", func(t *testing.T) {
		buildErr := NewError(KindConfigInvalid, OpBuild, "", errors.New("bucket is required"))
		op, err := New(context.Background(), stubBuilder{err: buildErr})
		assert.Nil(t, op)
		assert.Same(t, buildErr, err)
	})
}

func TestOperator_PathValidation(t *testing.T) {
	ctx := context.Background()
	stub := newStub()
	op := FromAccessor(stub)

	md, err := op.Stat(ctx, "")
	require.NoError(t, err)
	assert.True(t, md.IsDir())

	_, err = op.List(ctx, "file.txt")
	assert.Equal(t, KindNotADirectory, KindOf(err))

	_, err = op.Read(ctx, "dir/", 0, 10)
	assert.Equal(t, KindIsADirectory, KindOf(err))

	_, err = op.Read(ctx, "file.txt", -1, 10)
	assert.Equal(t, KindUnexpected, KindOf(err))

	err = op.Write(ctx, "dir/", []byte("x"))
	assert.Equal(t, KindIsADirectory, KindOf(err))

	err = op.CreateDir(ctx, "file.txt")
	assert.Equal(t, KindNotADirectory, KindOf(err))

	require.NoError(t, op.CreateDir(ctx, "/"))

	err = op.Delete(ctx, "/")
	assert.Equal(t, KindPermissionDenied, KindOf(err))

	assert.Zero(t, stub.callCount(), "invalid calls must not reach the accessor")
}

func TestOperator_ReadZeroSizeSkipsAccessor(t *testing.T) {
	stub := newStub()
	op := FromAccessor(stub)

	data, err := op.Read(context.Background(), "missing", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.Zero(t, stub.callCount())
}

func TestOperator_NormalizesPaths(t *testing.T) {
	ctx := context.Background()
	stub := newStub()
	op := FromAccessor(stub)

	require.NoError(t, op.Write(ctx, "/a//b.txt", []byte("hello")))
	_, ok := stub.files["a/b.txt"]
	assert.True(t, ok)

	data, err := op.ReadAll(ctx, "a/./b.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestOperator_IsExist(t *testing.T) {
	ctx := context.Background()
	stub := newStub()
	op := FromAccessor(stub)

	require.NoError(t, op.Write(ctx, "present", nil))

	ok, err := op.IsExist(ctx, "present")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = op.IsExist(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)

	stub.hook = func(context.Context, string) error {
		return NewError(KindPermissionDenied, OpStat, "", nil)
	}
	_, err = op.IsExist(ctx, "present")
	assert.Equal(t, KindPermissionDenied, KindOf(err))
}

func TestOperator_LayerDoesNotModifyReceiver(t *testing.T) {
	stub := newStub()
	base := FromAccessor(stub)

	var wrapped int
	layered := base.Layer(func(inner Accessor) Accessor {
		wrapped++
		return inner
	})

	assert.Equal(t, 1, wrapped)
	assert.NotSame(t, base, layered)
	assert.Same(t, Accessor(stub), base.accessor)
}

func TestOperator_CloseReachesBaseThroughLayers(t *testing.T) {
	acc := &closingStub{stubAccessor: newStub()}
	op := FromAccessor(acc).Layer(LoggingLayer()).Layer(TimeoutLayer(0))

	require.NoError(t, op.Close())
	assert.True(t, acc.closed)

	assert.NoError(t, FromAccessor(newStub()).Close())
}

func TestError(t *testing.T) {
	err := NewError(KindNotFound, OpStat, "a/b", errors.New("no such key"))
	assert.Equal(t, "NotFound (stat a/b): no such key", err.Error())

	assert.Equal(t, "ConfigInvalid (build)", NewError(KindConfigInvalid, OpBuild, "", nil).Error())
	assert.Equal(t, "ErrorKind(99)", ErrorKind(99).String())

	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsNotFound(nil))

	assert.Equal(t, KindTimeout, KindOf(fmt.Errorf("x: %w", context.DeadlineExceeded)))
	assert.Equal(t, KindUnexpected, KindOf(errors.New("boom")))
}

func TestRemoveAll(t *testing.T) {
	ctx := context.Background()
	stub := newStub()
	op := FromAccessor(stub)

	require.NoError(t, op.Write(ctx, "tree/a", nil))
	require.NoError(t, op.Write(ctx, "other", nil))

	require.NoError(t, RemoveAll(ctx, op, "tree"))

	_, ok := stub.files["tree/a"]
	assert.False(t, ok)
	_, ok = stub.files["other"]
	assert.True(t, ok)
}

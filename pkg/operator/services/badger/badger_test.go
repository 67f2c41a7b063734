package badger

import (
	"context"
	"testing"

	"github.com/marmos91/filesetfs/pkg/operator"
	optesting "github.com/marmos91/filesetfs/pkg/operator/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerAccessor_InMemory(t *testing.T) {
	suite := &optesting.AccessorTestSuite{
		NewOperator: func(t *testing.T) *operator.Operator {
			op, err := operator.New(context.Background(), FromMap(map[string]string{
				"in_memory": "true",
				"namespace": "test",
			}))
			require.NoError(t, err)
			return op
		},
	}
	suite.Run(t)
}

func TestBadgerAccessor_OnDisk(t *testing.T) {
	suite := &optesting.AccessorTestSuite{
		NewOperator: func(t *testing.T) *operator.Operator {
			op, err := operator.New(context.Background(), FromMap(map[string]string{
				"dir":  t.TempDir(),
				"root": "data",
			}))
			require.NoError(t, err)
			return op
		},
	}
	suite.Run(t)
}

func TestBadgerAccessor_Persistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	params := map[string]string{"dir": dir, "namespace": "ns"}

	op, err := operator.New(ctx, FromMap(params))
	require.NoError(t, err)
	require.NoError(t, op.Write(ctx, "persisted.txt", []byte("still here")))
	require.NoError(t, op.Close())

	op, err = operator.New(ctx, FromMap(params))
	require.NoError(t, err)
	defer func() { _ = op.Close() }()

	data, err := op.ReadAll(ctx, "persisted.txt")
	require.NoError(t, err)
	assert.Equal(t, "still here", string(data))

	md, err := op.Stat(ctx, "persisted.txt")
	require.NoError(t, err)
	assert.False(t, md.LastModified.IsZero())
}

func TestBadgerAccessor_NamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	acc, err := FromMap(map[string]string{"in_memory": "true", "namespace": "one"}).Build(ctx)
	require.NoError(t, err)
	one := acc.(*Accessor)
	defer func() { _ = one.Close() }()

	two := New(one.db, Config{Namespace: "two"})

	require.NoError(t, operator.FromAccessor(one).Write(ctx, "f", []byte("1")))

	_, err = operator.FromAccessor(two).Stat(ctx, "f")
	assert.True(t, operator.IsNotFound(err))
	assert.Equal(t, "two", two.Info().Name)
}

func TestBadgerBuilder_RequiresDir(t *testing.T) {
	_, err := FromMap(map[string]string{}).Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, operator.KindConfigInvalid, operator.KindOf(err))
}

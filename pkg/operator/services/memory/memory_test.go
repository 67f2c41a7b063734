package memory

import (
	"context"
	"testing"

	"github.com/marmos91/filesetfs/pkg/operator"
	optesting "github.com/marmos91/filesetfs/pkg/operator/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAccessor(t *testing.T) {
	suite := &optesting.AccessorTestSuite{
		NewOperator: func(t *testing.T) *operator.Operator {
			return operator.FromAccessor(New(Config{}))
		},
	}
	suite.Run(t)
}

func TestMemoryAccessor_WithRoot(t *testing.T) {
	suite := &optesting.AccessorTestSuite{
		NewOperator: func(t *testing.T) *operator.Operator {
			op, err := operator.New(context.Background(), FromMap(map[string]string{"root": "/fileset/"}))
			require.NoError(t, err)
			return op
		},
	}
	suite.Run(t)
}

func TestMemoryAccessor_RootIsolation(t *testing.T) {
	ctx := context.Background()
	acc := New(Config{Root: "a"})
	op := operator.FromAccessor(acc)

	require.NoError(t, op.Write(ctx, "f", []byte("x")))
	assert.Equal(t, 1, acc.Len())
	assert.Equal(t, "/a/", acc.Info().Root)

	_, ok := acc.objects.Get("a/f")
	assert.True(t, ok)
}

func TestMemoryAccessor_WithRootSharesObjects(t *testing.T) {
	ctx := context.Background()
	base := New(Config{})
	a := operator.FromAccessor(base.WithRoot("a"))
	b := operator.FromAccessor(base.WithRoot("b"))

	require.NoError(t, a.Write(ctx, "f", []byte("from a")))

	_, err := b.Stat(ctx, "f")
	assert.True(t, operator.IsNotFound(err))

	data, err := operator.FromAccessor(base).ReadAll(ctx, "a/f")
	require.NoError(t, err)
	assert.Equal(t, "from a", string(data))
}

func TestBuilder_Store(t *testing.T) {
	ctx := context.Background()
	base := New(Config{})

	op, err := operator.New(ctx, FromMap(map[string]string{"root": "team"}).Store(base))
	require.NoError(t, err)
	assert.Equal(t, "/team/", op.Info().Root)

	require.NoError(t, op.Write(ctx, "f", []byte("shared")))
	data, err := operator.FromAccessor(base).ReadAll(ctx, "team/f")
	require.NoError(t, err)
	assert.Equal(t, "shared", string(data))
}

// Package testing provides a conformance suite for storage operator services.
package testing

import (
	"context"
	"sort"
	"testing"

	"github.com/marmos91/filesetfs/pkg/operator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AccessorTestSuite tests the Accessor contract through an Operator. It is
// reusable across services (memory, badger, S3).
//
// Usage:
//
//	func TestMemoryAccessor(t *testing.T) {
//	    suite := &optesting.AccessorTestSuite{
//	        NewOperator: func(t *testing.T) *operator.Operator {
//	            return operator.FromAccessor(memory.New(memory.Config{}))
//	        },
//	    }
//	    suite.Run(t)
//	}
type AccessorTestSuite struct {
	// NewOperator creates an empty operator for each test.
	NewOperator func(t *testing.T) *operator.Operator
}

// Run executes all tests in the suite.
func (suite *AccessorTestSuite) Run(t *testing.T) {
	t.Run("Files", suite.RunFileTests)
	t.Run("Directories", suite.RunDirectoryTests)
	t.Run("Errors", suite.RunErrorTests)
}

func (suite *AccessorTestSuite) newOperator(t *testing.T) *operator.Operator {
	t.Helper()
	op := suite.NewOperator(t)
	t.Cleanup(func() { _ = op.Close() })
	return op
}

// RunFileTests covers write, stat, ranged read and delete of files.
func (suite *AccessorTestSuite) RunFileTests(t *testing.T) {
	ctx := context.Background()

	t.Run("WriteStatRead", func(t *testing.T) {
		op := suite.newOperator(t)

		require.NoError(t, op.Write(ctx, "file.txt", []byte("hello world")))

		md, err := op.Stat(ctx, "file.txt")
		require.NoError(t, err)
		assert.False(t, md.IsDir())
		assert.Equal(t, uint64(11), md.ContentLength)

		data, err := op.ReadAll(ctx, "/file.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(data))
	})

	t.Run("RangedRead", func(t *testing.T) {
		op := suite.newOperator(t)
		require.NoError(t, op.Write(ctx, "r.bin", []byte("0123456789")))

		data, err := op.Read(ctx, "r.bin", 2, 3)
		require.NoError(t, err)
		assert.Equal(t, "234", string(data))

		data, err = op.Read(ctx, "r.bin", 8, 10)
		require.NoError(t, err)
		assert.Equal(t, "89", string(data))

		data, err = op.Read(ctx, "r.bin", 10, 1)
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("Overwrite", func(t *testing.T) {
		op := suite.newOperator(t)
		require.NoError(t, op.Write(ctx, "f", []byte("long content")))
		require.NoError(t, op.Write(ctx, "f", []byte("short")))

		data, err := op.ReadAll(ctx, "f")
		require.NoError(t, err)
		assert.Equal(t, "short", string(data))
	})

	t.Run("EmptyFile", func(t *testing.T) {
		op := suite.newOperator(t)
		require.NoError(t, op.Write(ctx, "empty", nil))

		md, err := op.Stat(ctx, "empty")
		require.NoError(t, err)
		assert.Zero(t, md.ContentLength)
	})

	t.Run("Delete", func(t *testing.T) {
		op := suite.newOperator(t)
		require.NoError(t, op.Write(ctx, "gone", []byte("x")))
		require.NoError(t, op.Delete(ctx, "gone"))

		exists, err := op.IsExist(ctx, "gone")
		require.NoError(t, err)
		assert.False(t, exists)

		// Deleting again is not an error
		assert.NoError(t, op.Delete(ctx, "gone"))
	})
}

// RunDirectoryTests covers directory markers, implicit directories and listings.
func (suite *AccessorTestSuite) RunDirectoryTests(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateDir", func(t *testing.T) {
		op := suite.newOperator(t)
		require.NoError(t, op.CreateDir(ctx, "dir/"))

		md, err := op.Stat(ctx, "dir/")
		require.NoError(t, err)
		assert.True(t, md.IsDir())

		// Creating twice is idempotent
		require.NoError(t, op.CreateDir(ctx, "dir/"))

		entries, err := op.List(ctx, "dir/")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("RootIsDir", func(t *testing.T) {
		op := suite.newOperator(t)
		md, err := op.Stat(ctx, "/")
		require.NoError(t, err)
		assert.True(t, md.IsDir())
	})

	t.Run("ImplicitDir", func(t *testing.T) {
		op := suite.newOperator(t)
		require.NoError(t, op.Write(ctx, "a/b/c.txt", []byte("x")))

		md, err := op.Stat(ctx, "a/")
		require.NoError(t, err)
		assert.True(t, md.IsDir())

		_, err = op.Stat(ctx, "a")
		assert.True(t, operator.IsNotFound(err), "a directory is not found as a file")
	})

	t.Run("List", func(t *testing.T) {
		op := suite.newOperator(t)
		require.NoError(t, op.CreateDir(ctx, "d/"))
		require.NoError(t, op.Write(ctx, "d/one.txt", []byte("1")))
		require.NoError(t, op.Write(ctx, "d/two.txt", []byte("22")))
		require.NoError(t, op.CreateDir(ctx, "d/sub/"))
		require.NoError(t, op.Write(ctx, "d/sub/deep.txt", []byte("333")))
		require.NoError(t, op.Write(ctx, "d/implicit/x", []byte("4")))
		require.NoError(t, op.Write(ctx, "other.txt", []byte("5")))

		entries, err := op.List(ctx, "d/")
		require.NoError(t, err)

		got := make(map[string]operator.Entry)
		var paths []string
		for _, e := range entries {
			got[e.Path] = e
			paths = append(paths, e.Path)
		}
		sort.Strings(paths)
		assert.Equal(t, []string{"d/implicit/", "d/one.txt", "d/sub/", "d/two.txt"}, paths)

		assert.Equal(t, "two.txt", got["d/two.txt"].Name)
		assert.Equal(t, uint64(2), got["d/two.txt"].Metadata.ContentLength)
		assert.Equal(t, "sub/", got["d/sub/"].Name)
		assert.True(t, got["d/sub/"].Metadata.IsDir())
		assert.True(t, got["d/implicit/"].Metadata.IsDir())

		root, err := op.List(ctx, "/")
		require.NoError(t, err)
		var rootPaths []string
		for _, e := range root {
			rootPaths = append(rootPaths, e.Path)
		}
		assert.ElementsMatch(t, []string{"d/", "other.txt"}, rootPaths)
	})

	t.Run("ListMissing", func(t *testing.T) {
		op := suite.newOperator(t)
		entries, err := op.List(ctx, "missing/")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("RemoveAll", func(t *testing.T) {
		op := suite.newOperator(t)
		require.NoError(t, op.Write(ctx, "tree/a", []byte("a")))
		require.NoError(t, op.CreateDir(ctx, "tree/sub/"))
		require.NoError(t, op.Write(ctx, "tree/sub/b", []byte("b")))
		require.NoError(t, op.Write(ctx, "keep", []byte("k")))

		require.NoError(t, operator.RemoveAll(ctx, op, "tree"))

		exists, err := op.IsExist(ctx, "tree/")
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = op.IsExist(ctx, "keep")
		require.NoError(t, err)
		assert.True(t, exists)
	})
}

// RunErrorTests covers error kinds shared by all services.
func (suite *AccessorTestSuite) RunErrorTests(t *testing.T) {
	ctx := context.Background()

	t.Run("StatMissing", func(t *testing.T) {
		op := suite.newOperator(t)
		_, err := op.Stat(ctx, "nope")
		require.Error(t, err)
		assert.Equal(t, operator.KindNotFound, operator.KindOf(err))
	})

	t.Run("ReadMissing", func(t *testing.T) {
		op := suite.newOperator(t)
		_, err := op.ReadAll(ctx, "nope")
		assert.True(t, operator.IsNotFound(err))
	})

	t.Run("ReadDirectoryPath", func(t *testing.T) {
		op := suite.newOperator(t)
		_, err := op.ReadAll(ctx, "dir/")
		assert.Equal(t, operator.KindIsADirectory, operator.KindOf(err))
	})

	t.Run("WriteDirectoryPath", func(t *testing.T) {
		op := suite.newOperator(t)
		err := op.Write(ctx, "dir/", []byte("x"))
		assert.Equal(t, operator.KindIsADirectory, operator.KindOf(err))
	})

	t.Run("CreateDirFilePath", func(t *testing.T) {
		op := suite.newOperator(t)
		err := op.CreateDir(ctx, "file")
		assert.Equal(t, operator.KindNotADirectory, operator.KindOf(err))
	})

	t.Run("ListFilePath", func(t *testing.T) {
		op := suite.newOperator(t)
		_, err := op.List(ctx, "file")
		assert.Equal(t, operator.KindNotADirectory, operator.KindOf(err))
	})

	t.Run("DeleteRoot", func(t *testing.T) {
		op := suite.newOperator(t)
		err := op.Delete(ctx, "/")
		assert.Equal(t, operator.KindPermissionDenied, operator.KindOf(err))
	})
}

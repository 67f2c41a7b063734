// Package testing provides a conformance suite for PathFileSystem
// implementations.
package testing

import (
	"context"
	"sort"
	"testing"

	"github.com/marmos91/filesetfs/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// PathFileSystemTestSuite checks that a PathFileSystem honours the contract:
// same value types and same error codes whatever the backend.
//
// Usage:
//
//	func TestMemoryFileSystem(t *testing.T) {
//	    suite := &fstesting.PathFileSystemTestSuite{
//	        NewFS: func(t *testing.T) filesystem.PathFileSystem {
//	            return objectfs.New(operator.FromAccessor(memory.New(memory.Config{})), nil, nil)
//	        },
//	    }
//	    suite.Run(t)
//	}
type PathFileSystemTestSuite struct {
	// NewFS creates an empty, initialized-or-not filesystem for each test.
	// The suite calls Init itself.
	NewFS func(t *testing.T) filesystem.PathFileSystem
}

// Run executes all tests in the suite.
func (suite *PathFileSystemTestSuite) Run(t *testing.T) {
	t.Run("Root", suite.RunRootTests)
	t.Run("Files", suite.RunFileTests)
	t.Run("Directories", suite.RunDirectoryTests)
	t.Run("Errors", suite.RunErrorTests)
}

func (suite *PathFileSystemTestSuite) newFS(t *testing.T) filesystem.PathFileSystem {
	t.Helper()
	fs := suite.NewFS(t)
	require.NoError(t, fs.Init(context.Background()))
	return fs
}

// RunRootTests covers the root directory and capacity.
func (suite *PathFileSystemTestSuite) RunRootTests(t *testing.T) {
	ctx := context.Background()

	t.Run("StatRoot", func(t *testing.T) {
		fs := suite.newFS(t)

		stat, err := fs.Stat(ctx, "/")
		require.NoError(t, err)
		assert.True(t, stat.IsDir())
		assert.Equal(t, "/", stat.Path)
	})

	t.Run("EmptyRootListing", func(t *testing.T) {
		fs := suite.newFS(t)

		stats, err := fs.ReadDir(ctx, "/")
		require.NoError(t, err)
		assert.Empty(t, stats)
	})

	t.Run("Capacity", func(t *testing.T) {
		fs := suite.newFS(t)

		capacity, err := fs.GetCapacity()
		require.NoError(t, err)
		assert.Equal(t, filesystem.FileSystemCapacity{}, capacity)
	})

	t.Run("InitIsRepeatable", func(t *testing.T) {
		fs := suite.newFS(t)
		assert.NoError(t, fs.Init(ctx))
	})
}

// RunFileTests covers the file lifecycle.
func (suite *PathFileSystemTestSuite) RunFileTests(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateWriteRead", func(t *testing.T) {
		fs := suite.newFS(t)

		file, err := fs.CreateFile(ctx, "/hello.txt", filesystem.FlagCreate|filesystem.FlagWriteOnly)
		require.NoError(t, err)
		assert.Equal(t, "hello.txt", file.FileStat.Name)
		assert.False(t, file.FileStat.IsDir())

		n, err := file.Write(ctx, 0, []byte("hello "))
		require.NoError(t, err)
		assert.Equal(t, uint32(6), n)
		_, err = file.Write(ctx, 6, []byte("world"))
		require.NoError(t, err)
		assert.Equal(t, uint64(11), file.FileStat.Size)
		require.NoError(t, file.Close(ctx))

		stat, err := fs.Stat(ctx, "/hello.txt")
		require.NoError(t, err)
		assert.Equal(t, uint64(11), stat.Size)
		assert.Equal(t, filesystem.RegularFile, stat.Kind)

		file, err = fs.OpenFile(ctx, "/hello.txt", filesystem.FlagReadOnly)
		require.NoError(t, err)
		defer func() { _ = file.Close(ctx) }()

		data, err := file.Read(ctx, 0, 5)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))

		data, err = file.Read(ctx, 6, 100)
		require.NoError(t, err)
		assert.Equal(t, "world", string(data))

		data, err = file.Read(ctx, 11, 10)
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("FlushMakesDataVisible", func(t *testing.T) {
		fs := suite.newFS(t)

		file, err := fs.CreateFile(ctx, "/flush.txt", filesystem.FlagCreate|filesystem.FlagReadWrite)
		require.NoError(t, err)
		defer func() { _ = file.Close(ctx) }()

		_, err = file.Write(ctx, 0, []byte("abc"))
		require.NoError(t, err)
		require.NoError(t, file.Flush(ctx))

		data, err := file.Read(ctx, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, "abc", string(data))
	})

	t.Run("CreateEmptyFile", func(t *testing.T) {
		fs := suite.newFS(t)

		file, err := fs.CreateFile(ctx, "/empty", filesystem.FlagCreate|filesystem.FlagWriteOnly)
		require.NoError(t, err)
		require.NoError(t, file.Close(ctx))

		stat, err := fs.Stat(ctx, "/empty")
		require.NoError(t, err)
		assert.Zero(t, stat.Size)
	})

	t.Run("TruncateOnOpen", func(t *testing.T) {
		fs := suite.newFS(t)
		writeFile(t, fs, "/t.txt", "old content")

		file, err := fs.OpenFile(ctx, "/t.txt", filesystem.FlagWriteOnly|filesystem.FlagTruncate)
		require.NoError(t, err)
		assert.Zero(t, file.FileStat.Size)
		_, err = file.Write(ctx, 0, []byte("new"))
		require.NoError(t, err)
		require.NoError(t, file.Close(ctx))

		assert.Equal(t, "new", readFile(t, fs, "/t.txt"))
	})

	t.Run("Append", func(t *testing.T) {
		fs := suite.newFS(t)
		writeFile(t, fs, "/log.txt", "one\n")

		file, err := fs.OpenFile(ctx, "/log.txt", filesystem.FlagWriteOnly|filesystem.FlagAppend)
		require.NoError(t, err)
		_, err = file.Write(ctx, file.FileStat.Size, []byte("two\n"))
		require.NoError(t, err)
		require.NoError(t, file.Close(ctx))

		assert.Equal(t, "one\ntwo\n", readFile(t, fs, "/log.txt"))
	})

	t.Run("SetAttrSucceeds", func(t *testing.T) {
		fs := suite.newFS(t)
		writeFile(t, fs, "/attr.txt", "x")

		stat, err := fs.Stat(ctx, "/attr.txt")
		require.NoError(t, err)
		assert.NoError(t, fs.SetAttr(ctx, "/attr.txt", stat, true))
	})

	t.Run("RemoveFile", func(t *testing.T) {
		fs := suite.newFS(t)
		writeFile(t, fs, "/gone.txt", "bye")

		require.NoError(t, fs.RemoveFile(ctx, "/gone.txt"))

		_, err := fs.Stat(ctx, "/gone.txt")
		assert.True(t, filesystem.IsCode(err, filesystem.ErrNotFound))
	})
}

// RunDirectoryTests covers directory creation, listing and removal.
func (suite *PathFileSystemTestSuite) RunDirectoryTests(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateAndStat", func(t *testing.T) {
		fs := suite.newFS(t)

		stat, err := fs.CreateDir(ctx, "/docs")
		require.NoError(t, err)
		assert.True(t, stat.IsDir())
		assert.Equal(t, "docs", stat.Name)

		stat, err = fs.Stat(ctx, "/docs")
		require.NoError(t, err)
		assert.True(t, stat.IsDir())

		dir, err := fs.OpenDir(ctx, "/docs", filesystem.FlagReadOnly)
		require.NoError(t, err)
		assert.True(t, dir.FileStat.IsDir())
		require.NoError(t, dir.Close(ctx))
	})

	t.Run("ReadDir", func(t *testing.T) {
		fs := suite.newFS(t)

		_, err := fs.CreateDir(ctx, "/d")
		require.NoError(t, err)
		_, err = fs.CreateDir(ctx, "/d/sub")
		require.NoError(t, err)
		writeFile(t, fs, "/d/a.txt", "a")
		writeFile(t, fs, "/d/b.txt", "bb")
		writeFile(t, fs, "/d/sub/deep.txt", "deep")

		stats, err := fs.ReadDir(ctx, "/d")
		require.NoError(t, err)

		sort.Slice(stats, func(i, j int) bool { return stats[i].Path < stats[j].Path })
		require.Len(t, stats, 3)

		assert.Equal(t, "/d/a.txt", stats[0].Path)
		assert.Equal(t, "a.txt", stats[0].Name)
		assert.Equal(t, uint64(1), stats[0].Size)
		assert.Equal(t, "/d/b.txt", stats[1].Path)
		assert.Equal(t, "/d/sub", stats[2].Path)
		assert.Equal(t, "sub", stats[2].Name)
		assert.True(t, stats[2].IsDir())
	})

	t.Run("RemoveEmptyDir", func(t *testing.T) {
		fs := suite.newFS(t)

		_, err := fs.CreateDir(ctx, "/tmp")
		require.NoError(t, err)
		require.NoError(t, fs.RemoveDir(ctx, "/tmp"))

		_, err = fs.Stat(ctx, "/tmp")
		assert.True(t, filesystem.IsCode(err, filesystem.ErrNotFound))
	})

	t.Run("RemoveNonEmptyDir", func(t *testing.T) {
		fs := suite.newFS(t)

		_, err := fs.CreateDir(ctx, "/full")
		require.NoError(t, err)
		writeFile(t, fs, "/full/f", "x")

		err = fs.RemoveDir(ctx, "/full")
		assert.True(t, filesystem.IsCode(err, filesystem.ErrNotEmpty), "got %v", err)
	})
}

// RunErrorTests covers the error codes returned for invalid operations.
func (suite *PathFileSystemTestSuite) RunErrorTests(t *testing.T) {
	ctx := context.Background()

	t.Run("NotFound", func(t *testing.T) {
		fs := suite.newFS(t)

		_, err := fs.Stat(ctx, "/missing")
		assert.True(t, filesystem.IsCode(err, filesystem.ErrNotFound))

		_, err = fs.OpenFile(ctx, "/missing", filesystem.FlagReadOnly)
		assert.True(t, filesystem.IsCode(err, filesystem.ErrNotFound))

		_, err = fs.ReadDir(ctx, "/missing")
		assert.True(t, filesystem.IsCode(err, filesystem.ErrNotFound))

		err = fs.RemoveFile(ctx, "/missing")
		assert.True(t, filesystem.IsCode(err, filesystem.ErrNotFound))

		err = fs.RemoveDir(ctx, "/missing")
		assert.True(t, filesystem.IsCode(err, filesystem.ErrNotFound))
	})

	t.Run("AlreadyExists", func(t *testing.T) {
		fs := suite.newFS(t)
		writeFile(t, fs, "/dup", "x")

		_, err := fs.CreateFile(ctx, "/dup", filesystem.FlagCreate|filesystem.FlagWriteOnly)
		assert.True(t, filesystem.IsCode(err, filesystem.ErrAlreadyExists))

		_, err = fs.CreateDir(ctx, "/dir")
		require.NoError(t, err)
		_, err = fs.CreateDir(ctx, "/dir")
		assert.True(t, filesystem.IsCode(err, filesystem.ErrAlreadyExists))
	})

	t.Run("KindMismatch", func(t *testing.T) {
		fs := suite.newFS(t)
		writeFile(t, fs, "/file", "x")
		_, err := fs.CreateDir(ctx, "/dir")
		require.NoError(t, err)

		_, err = fs.OpenFile(ctx, "/dir", filesystem.FlagReadOnly)
		assert.True(t, filesystem.IsCode(err, filesystem.ErrIsDirectory))

		_, err = fs.OpenDir(ctx, "/file", filesystem.FlagReadOnly)
		assert.True(t, filesystem.IsCode(err, filesystem.ErrNotDirectory))

		_, err = fs.ReadDir(ctx, "/file")
		assert.True(t, filesystem.IsCode(err, filesystem.ErrNotDirectory))

		err = fs.RemoveDir(ctx, "/file")
		assert.True(t, filesystem.IsCode(err, filesystem.ErrNotDirectory))

		err = fs.RemoveFile(ctx, "/dir")
		assert.True(t, filesystem.IsCode(err, filesystem.ErrIsDirectory))
	})

	t.Run("ReadOnlyHandleRejectsWrites", func(t *testing.T) {
		fs := suite.newFS(t)
		writeFile(t, fs, "/ro", "x")

		file, err := fs.OpenFile(ctx, "/ro", filesystem.FlagReadOnly)
		require.NoError(t, err)
		defer func() { _ = file.Close(ctx) }()

		_, err = file.Write(ctx, 0, []byte("y"))
		assert.True(t, filesystem.IsCode(err, filesystem.ErrInvalidArgument))
	})
}

func writeFile(t *testing.T, fs filesystem.PathFileSystem, path, content string) {
	t.Helper()
	ctx := context.Background()

	file, err := fs.CreateFile(ctx, path, filesystem.FlagCreate|filesystem.FlagWriteOnly|filesystem.FlagTruncate)
	require.NoError(t, err)
	_, err = file.Write(ctx, 0, []byte(content))
	require.NoError(t, err)
	require.NoError(t, file.Close(ctx))
}

func readFile(t *testing.T, fs filesystem.PathFileSystem, path string) string {
	t.Helper()
	ctx := context.Background()

	file, err := fs.OpenFile(ctx, path, filesystem.FlagReadOnly)
	require.NoError(t, err)
	defer func() { _ = file.Close(ctx) }()

	stat, err := fs.Stat(ctx, path)
	require.NoError(t, err)

	data, err := file.Read(ctx, 0, uint32(stat.Size)+1)
	require.NoError(t, err)
	return string(data)
}

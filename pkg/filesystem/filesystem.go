// Package filesystem defines the path-oriented filesystem contract implemented
// by every storage backend adapter.
//
// A PathFileSystem addresses entries by absolute slash-separated paths
// ("/", "/dir", "/dir/file.txt"). Implementations must behave identically
// regardless of the backend behind them: the same operation returns the same
// value types and the same error codes (see Error and ErrorCode).
//
// Layers that compose filesystems (inode mapping, caching, a FUSE binding)
// depend only on this interface, so backends can be swapped at mount time.
package filesystem

import "context"

// PathFileSystem is the uniform filesystem contract.
//
// Implementations are safe for concurrent use. No ordering is guaranteed
// between concurrent calls on different paths.
type PathFileSystem interface {
	// Init prepares the filesystem for use.
	Init(ctx context.Context) error

	// Stat returns the stat of the file or directory at path.
	Stat(ctx context.Context, path string) (FileStat, error)

	// ReadDir lists the direct children of the directory at path.
	ReadDir(ctx context.Context, path string) ([]FileStat, error)

	// OpenFile opens an existing file.
	OpenFile(ctx context.Context, path string, flags OpenFileFlags) (*OpenedFile, error)

	// OpenDir opens an existing directory.
	OpenDir(ctx context.Context, path string, flags OpenFileFlags) (*OpenedFile, error)

	// CreateFile creates a file and returns it opened for writing.
	CreateFile(ctx context.Context, path string, flags OpenFileFlags) (*OpenedFile, error)

	// CreateDir creates a directory.
	CreateDir(ctx context.Context, path string) (FileStat, error)

	// SetAttr updates the attributes of the entry at path.
	SetAttr(ctx context.Context, path string, stat FileStat, flush bool) error

	// RemoveFile deletes a file.
	RemoveFile(ctx context.Context, path string) error

	// RemoveDir deletes an empty directory.
	RemoveDir(ctx context.Context, path string) error

	// GetCapacity reports the filesystem capacity.
	GetCapacity() (FileSystemCapacity, error)
}

// Package operator provides a backend-agnostic storage operator.
//
// An Operator wraps a service-specific Accessor (S3, in-memory, badger) behind a
// single object-storage API: stat, list, read, write, create_dir and delete on
// slash-separated relative paths. Directories are paths ending with "/".
//
// Operators are immutable. Layer returns a new Operator whose accessor is
// wrapped by the layer, so the same base operator can be shared by several
// differently-instrumented handles:
//
//	op, err := operator.New(ctx, s3.FromMap(params))
//	if err != nil {
//	    return err
//	}
//	op = op.Layer(operator.LoggingLayer())
package operator

import (
	"context"
	"io"
	"time"
)

// Operation names reported to layers, logs and metrics.
const (
	OpStat      = "stat"
	OpList      = "list"
	OpRead      = "read"
	OpWrite     = "write"
	OpCreateDir = "create_dir"
	OpDelete    = "delete"
	OpBuild     = "build"
)

// Mode is the kind of entry a path refers to.
type Mode int

const (
	ModeFile Mode = iota
	ModeDir
)

func (m Mode) String() string {
	if m == ModeDir {
		return "dir"
	}
	return "file"
}

// Metadata describes an entry.
type Metadata struct {
	Mode          Mode
	ContentLength uint64
	LastModified  time.Time
	ETag          string
}

// IsDir reports whether the entry is a directory.
func (m Metadata) IsDir() bool {
	return m.Mode == ModeDir
}

// Entry is a child returned by List.
type Entry struct {
	// Path is the operator path of the entry (directories end with "/")
	Path string

	// Name is the last element of Path (directories end with "/")
	Name string

	Metadata Metadata
}

// Info describes the service behind an accessor.
type Info struct {
	// Scheme is the service scheme (s3, memory, badger)
	Scheme string

	// Root is the prefix every operator path is resolved against
	Root string

	// Name is the service container (bucket, namespace)
	Name string
}

// Accessor is implemented by storage services and by layers wrapping them.
//
// Paths passed to an Accessor are already normalized (see NormalizePath).
type Accessor interface {
	Info() Info

	// Stat returns the metadata of path. Directories that exist only
	// implicitly (because they have children) are reported as directories.
	Stat(ctx context.Context, path string) (Metadata, error)

	// List returns the direct children of the directory path, excluding the
	// directory itself. Listing a missing directory returns no entries.
	List(ctx context.Context, path string) ([]Entry, error)

	// Read returns up to size bytes of path starting at offset. A negative
	// size reads to the end. Reading at or past the end returns no bytes.
	Read(ctx context.Context, path string, offset, size int64) ([]byte, error)

	// Write replaces the content of path with data.
	Write(ctx context.Context, path string, data []byte) error

	// CreateDir creates the directory path.
	CreateDir(ctx context.Context, path string) error

	// Delete removes path. Deleting a missing path succeeds.
	Delete(ctx context.Context, path string) error
}

// Builder constructs an Accessor for one service.
type Builder interface {
	// Scheme returns the service scheme.
	Scheme() string

	// Build validates the builder configuration and creates the accessor.
	// Errors are *Error with KindConfigInvalid for bad parameters.
	Build(ctx context.Context) (Accessor, error)
}

// Layer wraps an accessor with additional behavior.
type Layer func(Accessor) Accessor

// Operator is an immutable handle over an accessor stack.
type Operator struct {
	accessor Accessor

	// base is the unlayered service accessor, kept for Close
	base Accessor
}

// New builds the accessor described by b and wraps it in an Operator.
//
// Build errors are returned unchanged.
func New(ctx context.Context, b Builder) (*Operator, error) {
	acc, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}
	return FromAccessor(acc), nil
}

// FromAccessor wraps an existing accessor.
func FromAccessor(acc Accessor) *Operator {
	return &Operator{accessor: acc, base: acc}
}

// Layer returns a new Operator with l applied on top of the current stack.
// The receiver is not modified.
func (o *Operator) Layer(l Layer) *Operator {
	return &Operator{accessor: l(o.accessor), base: o.base}
}

// Info describes the underlying service.
func (o *Operator) Info() Info {
	return o.accessor.Info()
}

// Stat returns the metadata of path.
func (o *Operator) Stat(ctx context.Context, path string) (Metadata, error) {
	p := NormalizePath(path)
	if p == "/" {
		return Metadata{Mode: ModeDir}, nil
	}
	return o.accessor.Stat(ctx, p)
}

// IsExist reports whether path exists.
func (o *Operator) IsExist(ctx context.Context, path string) (bool, error) {
	_, err := o.Stat(ctx, path)
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// List returns the direct children of the directory path.
func (o *Operator) List(ctx context.Context, path string) ([]Entry, error) {
	p := NormalizePath(path)
	if !IsDirPath(p) {
		return nil, NewError(KindNotADirectory, OpList, p, nil)
	}
	return o.accessor.List(ctx, p)
}

// Read reads size bytes of path from offset; a negative size reads to the end.
func (o *Operator) Read(ctx context.Context, path string, offset, size int64) ([]byte, error) {
	p := NormalizePath(path)
	if IsDirPath(p) {
		return nil, NewError(KindIsADirectory, OpRead, p, nil)
	}
	if offset < 0 {
		return nil, NewError(KindUnexpected, OpRead, p, errNegativeOffset)
	}
	if size == 0 {
		return []byte{}, nil
	}
	return o.accessor.Read(ctx, p, offset, size)
}

// ReadAll reads the whole content of path.
func (o *Operator) ReadAll(ctx context.Context, path string) ([]byte, error) {
	return o.Read(ctx, path, 0, -1)
}

// Write replaces the content of path.
func (o *Operator) Write(ctx context.Context, path string, data []byte) error {
	p := NormalizePath(path)
	if IsDirPath(p) {
		return NewError(KindIsADirectory, OpWrite, p, nil)
	}
	return o.accessor.Write(ctx, p, data)
}

// CreateDir creates the directory path, which must end with "/".
func (o *Operator) CreateDir(ctx context.Context, path string) error {
	p := NormalizePath(path)
	if !IsDirPath(p) {
		return NewError(KindNotADirectory, OpCreateDir, p, nil)
	}
	if p == "/" {
		return nil
	}
	return o.accessor.CreateDir(ctx, p)
}

// Delete removes path. The root cannot be deleted.
func (o *Operator) Delete(ctx context.Context, path string) error {
	p := NormalizePath(path)
	if p == "/" {
		return NewError(KindPermissionDenied, OpDelete, p, errDeleteRoot)
	}
	return o.accessor.Delete(ctx, p)
}

// Close releases resources held by the service, if it holds any.
func (o *Operator) Close() error {
	if c, ok := o.base.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

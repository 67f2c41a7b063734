// Package objectfs implements filesystem.PathFileSystem on top of a storage
// operator.
//
// Files are objects and directories are "dir/" markers (or prefixes with
// children). The same FileSystem serves every operator service; backend
// adapters only decide how the operator is built.
package objectfs

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/marmos91/filesetfs/internal/logger"
	"github.com/marmos91/filesetfs/pkg/config"
	"github.com/marmos91/filesetfs/pkg/filesystem"
	"github.com/marmos91/filesetfs/pkg/operator"
)

// FileSystem is a PathFileSystem backed by an *operator.Operator.
//
// Thread safety:
// FileSystem is safe for concurrent use. Opened files are not; each handle
// belongs to one caller at a time.
type FileSystem struct {
	op     *operator.Operator
	fsCtx  *filesystem.FileSystemContext
	config *config.AppConfig

	nextHandle atomic.Uint64
}

var _ filesystem.PathFileSystem = (*FileSystem)(nil)

// New creates a FileSystem over op.
//
// A nil fsCtx is derived from cfg, or from the defaults when cfg is nil too.
func New(op *operator.Operator, cfg *config.AppConfig, fsCtx *filesystem.FileSystemContext) *FileSystem {
	if fsCtx == nil {
		if cfg != nil {
			fsCtx = filesystem.NewFileSystemContext(0, 0, cfg)
		} else {
			fsCtx = filesystem.DefaultFileSystemContext()
		}
	}
	return &FileSystem{op: op, fsCtx: fsCtx, config: cfg}
}

// Operator returns the operator the filesystem delegates to.
func (fs *FileSystem) Operator() *operator.Operator {
	return fs.op
}

// Context returns the filesystem context used for permissions.
func (fs *FileSystem) Context() *filesystem.FileSystemContext {
	return fs.fsCtx
}

// Close releases the resources of the underlying storage service.
func (fs *FileSystem) Close() error {
	return fs.op.Close()
}

func (fs *FileSystem) Init(ctx context.Context) error {
	info := fs.op.Info()
	logger.Debug("objectfs: initialized over %s://%s (root %s)", info.Scheme, info.Name, info.Root)
	return nil
}

func (fs *FileSystem) Stat(ctx context.Context, path string) (filesystem.FileStat, error) {
	p := filesystem.CleanPath(path)
	if p == "/" {
		return fs.dirStat(p, operator.Metadata{Mode: operator.ModeDir}), nil
	}

	md, err := fs.op.Stat(ctx, objectPath(p))
	if operator.IsNotFound(err) {
		md, err = fs.op.Stat(ctx, dirObjectPath(p))
	}
	if err != nil {
		return filesystem.FileStat{}, mapError("stat", p, err)
	}
	return fs.toStat(p, md), nil
}

func (fs *FileSystem) ReadDir(ctx context.Context, path string) ([]filesystem.FileStat, error) {
	dir, err := fs.Stat(ctx, path)
	if err != nil {
		return nil, err
	}
	if !dir.IsDir() {
		return nil, filesystem.PathErrorf(filesystem.ErrNotDirectory, dir.Path, nil, "read_dir on a file")
	}

	entries, err := fs.op.List(ctx, dirObjectPath(dir.Path))
	if err != nil {
		return nil, mapError("read_dir", dir.Path, err)
	}

	stats := make([]filesystem.FileStat, 0, len(entries))
	for _, entry := range entries {
		p := fsPath(entry.Path)
		if p == dir.Path {
			continue
		}
		stats = append(stats, fs.toStat(p, entry.Metadata))
	}
	return stats, nil
}

func (fs *FileSystem) OpenFile(ctx context.Context, path string, flags filesystem.OpenFileFlags) (*filesystem.OpenedFile, error) {
	stat, err := fs.Stat(ctx, path)
	if err != nil {
		return nil, err
	}
	if stat.IsDir() {
		return nil, filesystem.PathErrorf(filesystem.ErrIsDirectory, stat.Path, nil, "open_file on a directory")
	}

	file := fs.newOpenedFile(stat)
	if flags.IsRead() {
		file.Reader = newReader(fs.op, stat.Path)
	}
	if flags.IsWrite() || flags.IsCreate() || flags.IsAppend() || flags.IsTruncate() {
		w := newWriter(fs.op, stat.Path)
		switch {
		case flags.IsTruncate():
			w.truncate()
			file.FileStat.Size = 0
		default:
			// Writes continue from the current end of the object
			if err := w.preload(ctx); err != nil {
				return nil, err
			}
		}
		file.Writer = w
	}
	return file, nil
}

func (fs *FileSystem) OpenDir(ctx context.Context, path string, flags filesystem.OpenFileFlags) (*filesystem.OpenedFile, error) {
	stat, err := fs.Stat(ctx, path)
	if err != nil {
		return nil, err
	}
	if !stat.IsDir() {
		return nil, filesystem.PathErrorf(filesystem.ErrNotDirectory, stat.Path, nil, "open_dir on a file")
	}
	return fs.newOpenedFile(stat), nil
}

func (fs *FileSystem) CreateFile(ctx context.Context, path string, flags filesystem.OpenFileFlags) (*filesystem.OpenedFile, error) {
	p := filesystem.CleanPath(path)
	if p == "/" {
		return nil, filesystem.PathErrorf(filesystem.ErrIsDirectory, p, nil, "create_file on the root")
	}

	existing, err := fs.Stat(ctx, p)
	switch {
	case err == nil && existing.IsDir():
		return nil, filesystem.PathErrorf(filesystem.ErrAlreadyExists, p, nil, "a directory with this name exists")
	case err == nil && !flags.IsTruncate():
		return nil, filesystem.PathErrorf(filesystem.ErrAlreadyExists, p, nil, "file exists")
	case err != nil && !filesystem.IsCode(err, filesystem.ErrNotFound):
		return nil, err
	}

	if err := fs.op.Write(ctx, objectPath(p), nil); err != nil {
		return nil, mapError("create_file", p, err)
	}

	file := fs.newOpenedFile(fs.fileStat(p, 0))
	if flags.IsRead() {
		file.Reader = newReader(fs.op, p)
	}
	file.Writer = newWriter(fs.op, p)
	return file, nil
}

func (fs *FileSystem) CreateDir(ctx context.Context, path string) (filesystem.FileStat, error) {
	p := filesystem.CleanPath(path)

	if _, err := fs.Stat(ctx, p); err == nil {
		return filesystem.FileStat{}, filesystem.PathErrorf(filesystem.ErrAlreadyExists, p, nil, "create_dir")
	} else if !filesystem.IsCode(err, filesystem.ErrNotFound) {
		return filesystem.FileStat{}, err
	}

	if err := fs.op.CreateDir(ctx, dirObjectPath(p)); err != nil {
		return filesystem.FileStat{}, mapError("create_dir", p, err)
	}
	return fs.dirStat(p, operator.Metadata{Mode: operator.ModeDir}), nil
}

// SetAttr accepts and discards attribute changes; objects carry no mutable
// attributes.
func (fs *FileSystem) SetAttr(ctx context.Context, path string, stat filesystem.FileStat, flush bool) error {
	return nil
}

func (fs *FileSystem) RemoveFile(ctx context.Context, path string) error {
	stat, err := fs.Stat(ctx, path)
	if err != nil {
		return err
	}
	if stat.IsDir() {
		return filesystem.PathErrorf(filesystem.ErrIsDirectory, stat.Path, nil, "remove_file on a directory")
	}

	if err := fs.op.Delete(ctx, objectPath(stat.Path)); err != nil {
		return mapError("remove_file", stat.Path, err)
	}
	return nil
}

func (fs *FileSystem) RemoveDir(ctx context.Context, path string) error {
	stat, err := fs.Stat(ctx, path)
	if err != nil {
		return err
	}
	if !stat.IsDir() {
		return filesystem.PathErrorf(filesystem.ErrNotDirectory, stat.Path, nil, "remove_dir on a file")
	}

	dir := dirObjectPath(stat.Path)
	entries, err := fs.op.List(ctx, dir)
	if err != nil {
		return mapError("remove_dir", stat.Path, err)
	}
	for _, entry := range entries {
		if entry.Path != dir {
			return filesystem.PathErrorf(filesystem.ErrNotEmpty, stat.Path, nil, "remove_dir")
		}
	}

	if err := fs.op.Delete(ctx, dir); err != nil {
		return mapError("remove_dir", stat.Path, err)
	}
	return nil
}

func (fs *FileSystem) GetCapacity() (filesystem.FileSystemCapacity, error) {
	return filesystem.FileSystemCapacity{}, nil
}

func (fs *FileSystem) newOpenedFile(stat filesystem.FileStat) *filesystem.OpenedFile {
	file := filesystem.NewOpenedFile(stat)
	file.HandleID = fs.nextHandle.Add(1)
	return file
}

func (fs *FileSystem) toStat(p string, md operator.Metadata) filesystem.FileStat {
	if md.IsDir() {
		return fs.dirStat(p, md)
	}
	stat := fs.fileStat(p, md.ContentLength)
	if !md.LastModified.IsZero() {
		stat.SetTimes(md.LastModified)
	}
	return stat
}

func (fs *FileSystem) fileStat(p string, size uint64) filesystem.FileStat {
	stat := filesystem.NewFileStat(p, size)
	stat.Perm = fs.fsCtx.DefaultFilePerm
	return stat
}

func (fs *FileSystem) dirStat(p string, md operator.Metadata) filesystem.FileStat {
	stat := filesystem.NewDirStat(p)
	stat.Perm = fs.fsCtx.DefaultDirPerm
	if !md.LastModified.IsZero() {
		stat.SetTimes(md.LastModified)
	}
	return stat
}

// objectPath converts an absolute filesystem path into an operator file path.
func objectPath(p string) string {
	return strings.TrimPrefix(filesystem.CleanPath(p), "/")
}

// dirObjectPath converts an absolute filesystem path into an operator
// directory path ("/" for the root).
func dirObjectPath(p string) string {
	return operator.DirPath(objectPath(p))
}

// fsPath converts an operator path back into an absolute filesystem path.
func fsPath(p string) string {
	return filesystem.CleanPath(strings.TrimSuffix(p, "/"))
}

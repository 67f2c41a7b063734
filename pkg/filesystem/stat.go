package filesystem

import (
	"path"
	"time"

	"github.com/marmos91/filesetfs/pkg/config"
)

// FileType distinguishes regular files from directories.
type FileType int

const (
	// RegularFile is an object holding file content
	RegularFile FileType = iota

	// Directory is a prefix grouping other entries
	Directory
)

func (t FileType) String() string {
	switch t {
	case RegularFile:
		return "file"
	case Directory:
		return "directory"
	default:
		return "unknown"
	}
}

// FileStat describes a file or directory in a path-oriented filesystem.
//
// FileID and ParentFileID are left zero by path filesystems; they are assigned
// by whichever layer maps paths to inodes.
type FileStat struct {
	FileID       uint64
	ParentFileID uint64

	// Name is the last element of Path
	Name string

	// Path is the absolute, slash-separated path inside the fileset
	Path string

	Size uint64
	Kind FileType
	Perm uint16

	Atime time.Time
	Mtime time.Time
	Ctime time.Time

	Nlink uint32
}

// NewFileStat creates the stat of a regular file at p.
func NewFileStat(p string, size uint64) FileStat {
	now := time.Now()
	p = CleanPath(p)
	return FileStat{
		Name:  path.Base(p),
		Path:  p,
		Size:  size,
		Kind:  RegularFile,
		Atime: now,
		Mtime: now,
		Ctime: now,
		Nlink: 1,
	}
}

// NewDirStat creates the stat of a directory at p.
func NewDirStat(p string) FileStat {
	stat := NewFileStat(p, 0)
	stat.Kind = Directory
	stat.Nlink = 2
	return stat
}

// IsDir reports whether the stat describes a directory.
func (s FileStat) IsDir() bool {
	return s.Kind == Directory
}

// SetTimes sets atime, mtime and ctime to t.
func (s *FileStat) SetTimes(t time.Time) {
	s.Atime = t
	s.Mtime = t
	s.Ctime = t
}

// CleanPath returns p as an absolute, cleaned, slash-separated path.
func CleanPath(p string) string {
	return path.Clean("/" + p)
}

// FileSystemCapacity reports capacity information of a filesystem.
//
// Object stores have no meaningful capacity limits, so the value is empty; the
// type exists so every backend answers the same call with the same shape.
type FileSystemCapacity struct{}

// FileSystemContext carries mount-wide settings shared by every filesystem layer.
type FileSystemContext struct {
	UID uint32
	GID uint32

	DefaultFilePerm uint16
	DefaultDirPerm  uint16

	BlockSize uint32
}

// NewFileSystemContext builds the context for a mount owned by uid/gid.
func NewFileSystemContext(uid, gid uint32, cfg *config.AppConfig) *FileSystemContext {
	return &FileSystemContext{
		UID:             uid,
		GID:             gid,
		DefaultFilePerm: uint16(cfg.Fuse.FileMask),
		DefaultDirPerm:  uint16(cfg.Fuse.DirMask),
		BlockSize:       cfg.Filesystem.BlockSize,
	}
}

// DefaultFileSystemContext returns a context with the default configuration values.
func DefaultFileSystemContext() *FileSystemContext {
	return &FileSystemContext{
		DefaultFilePerm: config.DefaultFileMask,
		DefaultDirPerm:  config.DefaultDirMask,
		BlockSize:       config.DefaultBlockSize,
	}
}

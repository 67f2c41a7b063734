package filesystem

import "os"

// OpenFileFlags holds POSIX open(2) flags as passed by a FUSE binding.
type OpenFileFlags uint32

const (
	FlagReadOnly  = OpenFileFlags(os.O_RDONLY)
	FlagWriteOnly = OpenFileFlags(os.O_WRONLY)
	FlagReadWrite = OpenFileFlags(os.O_RDWR)
	FlagCreate    = OpenFileFlags(os.O_CREATE)
	FlagAppend    = OpenFileFlags(os.O_APPEND)
	FlagTruncate  = OpenFileFlags(os.O_TRUNC)
	FlagExclusive = OpenFileFlags(os.O_EXCL)
)

// IsRead reports whether the file may be read.
func (f OpenFileFlags) IsRead() bool {
	return f&FlagWriteOnly == 0
}

// IsWrite reports whether the file may be written.
func (f OpenFileFlags) IsWrite() bool {
	return f&(FlagWriteOnly|FlagReadWrite) != 0
}

func (f OpenFileFlags) IsCreate() bool {
	return f&FlagCreate != 0
}

func (f OpenFileFlags) IsAppend() bool {
	return f&FlagAppend != 0
}

func (f OpenFileFlags) IsTruncate() bool {
	return f&FlagTruncate != 0
}

func (f OpenFileFlags) IsExclusive() bool {
	return f&FlagExclusive != 0
}

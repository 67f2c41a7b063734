package objectfs

import (
	"github.com/marmos91/filesetfs/pkg/filesystem"
	"github.com/marmos91/filesetfs/pkg/operator"
)

var kindCodes = map[operator.ErrorKind]filesystem.ErrorCode{
	operator.KindNotFound:         filesystem.ErrNotFound,
	operator.KindAlreadyExists:    filesystem.ErrAlreadyExists,
	operator.KindPermissionDenied: filesystem.ErrPermissionDenied,
	operator.KindIsADirectory:     filesystem.ErrIsDirectory,
	operator.KindNotADirectory:    filesystem.ErrNotDirectory,
	operator.KindNotEmpty:         filesystem.ErrNotEmpty,
	operator.KindConfigInvalid:    filesystem.ErrInvalidConfig,
	operator.KindTimeout:          filesystem.ErrTimeout,
}

// mapError converts an operator error into a filesystem error for path.
// Kinds without a filesystem counterpart (rate limiting, unexpected backend
// failures) become ErrIO.
func mapError(op, path string, err error) error {
	code, ok := kindCodes[operator.KindOf(err)]
	if !ok {
		code = filesystem.ErrIO
	}
	return filesystem.PathErrorf(code, path, err, "%s failed", op)
}

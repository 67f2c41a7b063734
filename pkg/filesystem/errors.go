package filesystem

import (
	"errors"
	"fmt"
	"syscall"
)

// Error represents a failure reported through the PathFileSystem contract.
//
// Every backend adapter returns these errors so that callers (a raw filesystem
// layer or a FUSE binding) can translate them without knowing which storage
// backend produced them.
type Error struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the filesystem path related to the error (if applicable)
	Path string

	// Err is the underlying cause, if any
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Code.String() + ": " + e.Message
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode represents the category of a filesystem error.
type ErrorCode int

const (
	// ErrInvalidConfig indicates backend parameters could not be resolved from
	// the catalog, fileset or application configuration.
	ErrInvalidConfig ErrorCode = iota

	// ErrOperator indicates the backend storage operator could not be built.
	ErrOperator

	// ErrNotFound indicates the requested file or directory doesn't exist
	ErrNotFound

	// ErrAlreadyExists indicates a file or directory with the name already exists
	ErrAlreadyExists

	// ErrNotEmpty indicates a directory is not empty (cannot be removed)
	ErrNotEmpty

	// ErrNotDirectory indicates operation expected a directory but got a file
	ErrNotDirectory

	// ErrIsDirectory indicates operation expected a file but got a directory
	ErrIsDirectory

	// ErrPermissionDenied indicates the backend refused access
	ErrPermissionDenied

	// ErrInvalidArgument indicates invalid parameters were provided
	ErrInvalidArgument

	// ErrIO indicates an unexpected backend or transport failure
	ErrIO

	// ErrNotSupported indicates the operation is not supported by the backend
	ErrNotSupported

	// ErrTimeout indicates the backend did not answer in time
	ErrTimeout
)

var codeNames = map[ErrorCode]string{
	ErrInvalidConfig:    "InvalidConfig",
	ErrOperator:         "OperatorError",
	ErrNotFound:         "NotFound",
	ErrAlreadyExists:    "AlreadyExists",
	ErrNotEmpty:         "NotEmpty",
	ErrNotDirectory:     "NotDirectory",
	ErrIsDirectory:      "IsDirectory",
	ErrPermissionDenied: "PermissionDenied",
	ErrInvalidArgument:  "InvalidArgument",
	ErrIO:               "IOError",
	ErrNotSupported:     "NotSupported",
	ErrTimeout:          "Timeout",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// Errno maps the code to the POSIX errno a kernel-facing binding should return.
func (c ErrorCode) Errno() syscall.Errno {
	switch c {
	case ErrNotFound:
		return syscall.ENOENT
	case ErrAlreadyExists:
		return syscall.EEXIST
	case ErrNotEmpty:
		return syscall.ENOTEMPTY
	case ErrNotDirectory:
		return syscall.ENOTDIR
	case ErrIsDirectory:
		return syscall.EISDIR
	case ErrPermissionDenied:
		return syscall.EACCES
	case ErrInvalidArgument, ErrInvalidConfig:
		return syscall.EINVAL
	case ErrNotSupported:
		return syscall.ENOSYS
	case ErrTimeout:
		return syscall.ETIMEDOUT
	default:
		return syscall.EIO
	}
}

// NewError creates an Error with a formatted message.
func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates an Error carrying an underlying cause.
func WrapError(code ErrorCode, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// PathErrorf creates an Error tied to a path.
func PathErrorf(code ErrorCode, path string, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Path: path, Err: err}
}

// IsCode reports whether err (or any error it wraps) is an *Error with code.
func IsCode(err error, code ErrorCode) bool {
	var fsErr *Error
	if errors.As(err, &fsErr) {
		return fsErr.Code == code
	}
	return false
}

// CodeOf returns the code of err, or ErrIO for errors not produced by this package.
func CodeOf(err error) ErrorCode {
	var fsErr *Error
	if errors.As(err, &fsErr) {
		return fsErr.Code
	}
	return ErrIO
}

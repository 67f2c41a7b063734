package operator

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies operator failures independently of the backend.
type ErrorKind int

const (
	// KindUnexpected is any failure the service could not classify
	KindUnexpected ErrorKind = iota

	// KindNotFound means the path does not exist
	KindNotFound

	// KindAlreadyExists means the path exists and the operation refuses to overwrite it
	KindAlreadyExists

	// KindPermissionDenied means the backend refused access
	KindPermissionDenied

	// KindIsADirectory means a file operation was given a directory path
	KindIsADirectory

	// KindNotADirectory means a directory operation was given a file path
	KindNotADirectory

	// KindNotEmpty means a directory still has children
	KindNotEmpty

	// KindConfigInvalid means service parameters are missing or malformed
	KindConfigInvalid

	// KindRateLimited means the call was rejected by a rate limiter
	KindRateLimited

	// KindTimeout means the call did not finish before its deadline
	KindTimeout
)

var kindNames = map[ErrorKind]string{
	KindUnexpected:       "Unexpected",
	KindNotFound:         "NotFound",
	KindAlreadyExists:    "AlreadyExists",
	KindPermissionDenied: "PermissionDenied",
	KindIsADirectory:     "IsADirectory",
	KindNotADirectory:    "NotADirectory",
	KindNotEmpty:         "NotEmpty",
	KindConfigInvalid:    "ConfigInvalid",
	KindRateLimited:      "RateLimited",
	KindTimeout:          "Timeout",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is returned by every Accessor method and by service builders.
type Error struct {
	Kind ErrorKind

	// Op is the operation that failed (stat, list, read, write, create_dir, delete, build)
	Op string

	// Path is the operator-relative path, empty for build errors
	Path string

	Err error
}

// NewError creates an Error. err may be nil.
func NewError(kind ErrorKind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String() + " (" + e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err.
//
// Errors not produced by this package are classified as KindTimeout when they
// wrap context.DeadlineExceeded and KindUnexpected otherwise.
func KindOf(err error) ErrorKind {
	var opErr *Error
	if errors.As(err, &opErr) {
		return opErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnexpected
}

// IsNotFound reports whether err is a KindNotFound error.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

var (
	errNegativeOffset = errors.New("negative offset")
	errDeleteRoot     = errors.New("refusing to delete the root")
)

package filesystem

import (
	"context"
	"errors"
)

// FileReader reads ranges of an opened file.
type FileReader interface {
	// Read returns up to size bytes starting at offset. A short or empty
	// result means the end of the file was reached.
	Read(ctx context.Context, offset uint64, size uint32) ([]byte, error)

	Close(ctx context.Context) error
}

// FileWriter writes to an opened file.
type FileWriter interface {
	// Write stores data at offset and returns the number of bytes written.
	Write(ctx context.Context, offset uint64, data []byte) (uint32, error)

	// Flush makes previously written data visible to other readers.
	Flush(ctx context.Context) error

	Close(ctx context.Context) error
}

// OpenedFile is a file or directory returned by Open*/Create* operations.
//
// Reader and Writer are nil when the file was not opened for that access mode.
type OpenedFile struct {
	FileStat FileStat
	HandleID uint64

	Reader FileReader
	Writer FileWriter

	closed bool
}

// NewOpenedFile wraps stat into an OpenedFile without reader or writer.
func NewOpenedFile(stat FileStat) *OpenedFile {
	return &OpenedFile{FileStat: stat}
}

// Read reads size bytes from offset.
func (f *OpenedFile) Read(ctx context.Context, offset uint64, size uint32) ([]byte, error) {
	if f.Reader == nil {
		return nil, NewError(ErrInvalidArgument, "file %s is not opened for reading", f.FileStat.Path)
	}
	data, err := f.Reader.Read(ctx, offset, size)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Write writes data at offset and extends the cached size when needed.
func (f *OpenedFile) Write(ctx context.Context, offset uint64, data []byte) (uint32, error) {
	if f.Writer == nil {
		return 0, NewError(ErrInvalidArgument, "file %s is not opened for writing", f.FileStat.Path)
	}
	n, err := f.Writer.Write(ctx, offset, data)
	if err != nil {
		return n, err
	}
	if end := offset + uint64(n); end > f.FileStat.Size {
		f.FileStat.Size = end
	}
	return n, nil
}

// Flush flushes the writer, if any.
func (f *OpenedFile) Flush(ctx context.Context) error {
	if f.Writer == nil {
		return nil
	}
	return f.Writer.Flush(ctx)
}

// Close closes the writer and then the reader. Closing twice is a no-op.
func (f *OpenedFile) Close(ctx context.Context) error {
	if f.closed {
		return nil
	}
	f.closed = true

	var errs []error
	if f.Writer != nil {
		if err := f.Writer.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if f.Reader != nil {
		if err := f.Reader.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

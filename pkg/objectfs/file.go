package objectfs

import (
	"context"
	"sync"

	"github.com/marmos91/filesetfs/pkg/filesystem"
	"github.com/marmos91/filesetfs/pkg/operator"
)

// reader issues one ranged operator read per call.
type reader struct {
	op   *operator.Operator
	path string
}

func newReader(op *operator.Operator, path string) *reader {
	return &reader{op: op, path: path}
}

func (r *reader) Read(ctx context.Context, offset uint64, size uint32) ([]byte, error) {
	data, err := r.op.Read(ctx, objectPath(r.path), int64(offset), int64(size))
	if err != nil {
		return nil, mapError("read", r.path, err)
	}
	return data, nil
}

func (r *reader) Close(context.Context) error {
	return nil
}

// writer buffers sequential writes and uploads the whole object on Flush.
//
// Object stores replace objects atomically, so a write that does not start at
// the current end of the buffer cannot be expressed and is rejected.
type writer struct {
	op   *operator.Operator
	path string

	mu     sync.Mutex
	buf    []byte
	dirty  bool
	closed bool
}

func newWriter(op *operator.Operator, path string) *writer {
	return &writer{op: op, path: path}
}

// truncate discards any content so the next flush uploads an empty object.
func (w *writer) truncate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = nil
	w.dirty = true
}

// preload loads the current object so writes extend it.
func (w *writer) preload(ctx context.Context) error {
	data, err := w.op.ReadAll(ctx, objectPath(w.path))
	if err != nil {
		return mapError("open_file", w.path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = data
	return nil
}

func (w *writer) Write(ctx context.Context, offset uint64, data []byte) (uint32, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, filesystem.PathErrorf(filesystem.ErrInvalidArgument, w.path, nil, "write on a closed file")
	}
	if offset != uint64(len(w.buf)) {
		return 0, filesystem.PathErrorf(filesystem.ErrInvalidArgument, w.path, nil,
			"non-sequential write at offset %d (expected %d)", offset, len(w.buf))
	}

	w.buf = append(w.buf, data...)
	w.dirty = true
	return uint32(len(data)), nil
}

func (w *writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked(ctx)
}

func (w *writer) flushLocked(ctx context.Context) error {
	if !w.dirty {
		return nil
	}
	if err := w.op.Write(ctx, objectPath(w.path), w.buf); err != nil {
		return mapError("write", w.path, err)
	}
	w.dirty = false
	return nil
}

func (w *writer) Close(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	err := w.flushLocked(ctx)
	w.closed = true
	w.buf = nil
	return err
}

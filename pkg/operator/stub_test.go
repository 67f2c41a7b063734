package operator

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// stubAccessor is a minimal map-backed Accessor for exercising Operator and
// layers without a real service.
type stubAccessor struct {
	mu    sync.Mutex
	files map[string][]byte
	calls []string

	// hook, when set, runs before every operation and may fail it
	hook func(ctx context.Context, op string) error
}

func newStub() *stubAccessor {
	return &stubAccessor{files: make(map[string][]byte)}
}

func (s *stubAccessor) before(ctx context.Context, op string) error {
	s.mu.Lock()
	s.calls = append(s.calls, op)
	hook := s.hook
	s.mu.Unlock()
	if hook != nil {
		return hook(ctx, op)
	}
	return nil
}

func (s *stubAccessor) Info() Info {
	return Info{Scheme: "stub", Root: "/", Name: "stub"}
}

func (s *stubAccessor) Stat(ctx context.Context, path string) (Metadata, error) {
	if err := s.before(ctx, OpStat); err != nil {
		return Metadata{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if IsDirPath(path) {
		for k := range s.files {
			if strings.HasPrefix(k, path) {
				return Metadata{Mode: ModeDir}, nil
			}
		}
		return Metadata{}, NewError(KindNotFound, OpStat, path, nil)
	}
	data, ok := s.files[path]
	if !ok {
		return Metadata{}, NewError(KindNotFound, OpStat, path, nil)
	}
	return Metadata{Mode: ModeFile, ContentLength: uint64(len(data))}, nil
}

func (s *stubAccessor) List(ctx context.Context, path string) ([]Entry, error) {
	if err := s.before(ctx, OpList); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []Entry
	for k := range s.files {
		if path == "/" || strings.HasPrefix(k, path) {
			entries = append(entries, Entry{Path: k, Name: BaseName(k)})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func (s *stubAccessor) Read(ctx context.Context, path string, offset, size int64) ([]byte, error) {
	if err := s.before(ctx, OpRead); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	if !ok {
		return nil, NewError(KindNotFound, OpRead, path, nil)
	}
	return SliceRange(data, offset, size), nil
}

func (s *stubAccessor) Write(ctx context.Context, path string, data []byte) error {
	if err := s.before(ctx, OpWrite); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = append([]byte(nil), data...)
	return nil
}

func (s *stubAccessor) CreateDir(ctx context.Context, path string) error {
	return s.before(ctx, OpCreateDir)
}

func (s *stubAccessor) Delete(ctx context.Context, path string) error {
	if err := s.before(ctx, OpDelete); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	return nil
}

func (s *stubAccessor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type closingStub struct {
	*stubAccessor
	closed bool
}

func (c *closingStub) Close() error {
	c.closed = true
	return nil
}

type stubBuilder struct {
	acc Accessor
	err error
}

func (b stubBuilder) Scheme() string { return "stub" }

func (b stubBuilder) Build(context.Context) (Accessor, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.acc, nil
}

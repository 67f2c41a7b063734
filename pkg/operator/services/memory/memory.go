// Package memory implements an in-memory storage operator service.
//
// Objects live in an ordered B-tree keyed by full object key, so directory
// listings are range scans. Directories are zero-length entries whose key ends
// with "/"; like object stores, a directory also exists implicitly while any
// key lies below it.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/marmos91/filesetfs/pkg/operator"
	"github.com/tidwall/btree"
)

// Scheme is the service scheme.
const Scheme = "memory"

// Config holds the service parameters.
type Config struct {
	// Root is the key prefix every path is resolved against
	Root string `mapstructure:"root"`
}

// Builder builds memory accessors.
type Builder struct {
	params map[string]string
	shared *Accessor
}

// FromMap creates a Builder from flat parameters ("root").
func FromMap(params map[string]string) *Builder {
	copied := make(map[string]string, len(params))
	for k, v := range params {
		copied[k] = v
	}
	return &Builder{params: copied}
}

// Root sets the root prefix.
func (b *Builder) Root(root string) *Builder {
	b.params["root"] = root
	return b
}

// Store makes Build serve the objects of a instead of a new empty store.
func (b *Builder) Store(a *Accessor) *Builder {
	b.shared = a
	return b
}

func (b *Builder) Scheme() string { return Scheme }

// Build creates an empty store, or a view of the store set with Store.
func (b *Builder) Build(_ context.Context) (operator.Accessor, error) {
	var cfg Config
	if err := operator.DecodeParams(Scheme, b.params, &cfg); err != nil {
		return nil, err
	}
	if b.shared != nil {
		return b.shared.WithRoot(cfg.Root), nil
	}
	return New(cfg), nil
}

type object struct {
	data     []byte
	modified time.Time
}

type store struct {
	mu      sync.RWMutex
	objects *btree.Map[string, object]
}

// Accessor is the in-memory operator.Accessor.
type Accessor struct {
	*store
	root string
}

// New creates an empty in-memory accessor.
func New(cfg Config) *Accessor {
	return &Accessor{
		store: &store{objects: btree.NewMap[string, object](0)},
		root:  operator.JoinRoot(cfg.Root, "/"),
	}
}

// WithRoot returns an accessor sharing a's objects under a different root.
func (a *Accessor) WithRoot(root string) *Accessor {
	return &Accessor{store: a.store, root: operator.JoinRoot(root, "/")}
}

func (a *Accessor) Info() operator.Info {
	return operator.Info{Scheme: Scheme, Root: "/" + a.root, Name: "memory"}
}

func (a *Accessor) key(p string) string {
	return operator.JoinRoot(a.root, p)
}

// hasChildren reports whether any key lies strictly below prefix. Caller holds mu.
func (a *Accessor) hasChildren(prefix string) bool {
	found := false
	a.objects.Ascend(prefix, func(key string, _ object) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}
		if key != prefix {
			found = true
			return false
		}
		return true
	})
	return found
}

func (a *Accessor) Stat(_ context.Context, p string) (operator.Metadata, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	key := a.key(p)
	if obj, ok := a.objects.Get(key); ok {
		return metadataOf(key, obj), nil
	}
	if operator.IsDirPath(p) && a.hasChildren(key) {
		return operator.Metadata{Mode: operator.ModeDir}, nil
	}
	return operator.Metadata{}, operator.NewError(operator.KindNotFound, operator.OpStat, p, nil)
}

func metadataOf(key string, obj object) operator.Metadata {
	md := operator.Metadata{
		ContentLength: uint64(len(obj.data)),
		LastModified:  obj.modified,
	}
	if operator.IsDirPath(key) {
		md.Mode = operator.ModeDir
		md.ContentLength = 0
	}
	return md
}

func (a *Accessor) List(_ context.Context, p string) ([]operator.Entry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	prefix := a.key(p)
	var entries []operator.Entry
	seen := make(map[string]bool)

	a.objects.Ascend(prefix, func(key string, obj object) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}
		rest := key[len(prefix):]
		if rest == "" {
			return true
		}

		childPath, implicit := operator.FirstLevel(p, rest)
		if implicit {
			if !seen[childPath] {
				seen[childPath] = true
				entries = append(entries, operator.Entry{
					Path:     childPath,
					Name:     operator.BaseName(childPath),
					Metadata: operator.Metadata{Mode: operator.ModeDir},
				})
			}
			return true
		}

		if seen[childPath] {
			return true
		}
		seen[childPath] = true
		entries = append(entries, operator.Entry{
			Path:     childPath,
			Name:     operator.BaseName(childPath),
			Metadata: metadataOf(key, obj),
		})
		return true
	})

	return entries, nil
}

func (a *Accessor) Read(_ context.Context, p string, offset, size int64) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	obj, ok := a.objects.Get(a.key(p))
	if !ok {
		if a.hasChildren(a.key(p) + "/") {
			return nil, operator.NewError(operator.KindIsADirectory, operator.OpRead, p, nil)
		}
		return nil, operator.NewError(operator.KindNotFound, operator.OpRead, p, nil)
	}
	return operator.SliceRange(obj.data, offset, size), nil
}

func (a *Accessor) Write(_ context.Context, p string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := a.key(p)
	if _, ok := a.objects.Get(key + "/"); ok {
		return operator.NewError(operator.KindIsADirectory, operator.OpWrite, p, nil)
	}

	copied := make([]byte, len(data))
	copy(copied, data)
	a.objects.Set(key, object{data: copied, modified: time.Now()})
	return nil
}

func (a *Accessor) CreateDir(_ context.Context, p string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := a.key(p)
	if _, ok := a.objects.Get(strings.TrimSuffix(key, "/")); ok {
		return operator.NewError(operator.KindNotADirectory, operator.OpCreateDir, p, nil)
	}
	if _, ok := a.objects.Get(key); !ok {
		a.objects.Set(key, object{modified: time.Now()})
	}
	return nil
}

func (a *Accessor) Delete(_ context.Context, p string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.objects.Delete(a.key(p))
	return nil
}

// Len returns the number of stored keys, including directory markers.
func (a *Accessor) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.objects.Len()
}

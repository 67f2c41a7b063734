// Package badger implements a storage operator service persisted in BadgerDB.
//
// It gives a local, durable object store with the same path semantics as the
// S3 service, which makes it useful for offline development and for caching
// filesets on local disk.
//
// Key layout:
//
//	"o:" + namespace + ":" + root + path  -> 8-byte big-endian mtime (unix ns) + content
//
// Directory markers are keys ending with "/" and carry no content.
package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/marmos91/filesetfs/pkg/operator"
)

// Scheme is the service scheme.
const Scheme = "badger"

// headerSize is the length of the mtime header stored before the content.
const headerSize = 8

// Config holds the service parameters.
type Config struct {
	// Dir is the BadgerDB directory (required unless InMemory)
	Dir string `mapstructure:"dir" validate:"required_without=InMemory"`

	// InMemory keeps the database in memory only
	InMemory bool `mapstructure:"in_memory"`

	// Namespace separates several filesets stored in one database
	Namespace string `mapstructure:"namespace"`

	// Root is the path prefix every operator path is resolved against
	Root string `mapstructure:"root"`
}

// Builder builds badger accessors.
type Builder struct {
	params map[string]string
}

// FromMap creates a Builder from flat parameters ("dir", "in_memory",
// "namespace", "root").
func FromMap(params map[string]string) *Builder {
	copied := make(map[string]string, len(params))
	for k, v := range params {
		copied[k] = v
	}
	return &Builder{params: copied}
}

func (b *Builder) Scheme() string { return Scheme }

// Build opens the database.
func (b *Builder) Build(ctx context.Context) (operator.Accessor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := operator.DecodeParams(Scheme, b.params, &cfg); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(cfg.Dir).
		WithInMemory(cfg.InMemory).
		WithLoggingLevel(badger.WARNING). // Reduce log noise
		WithCompression(options.None)
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("")
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, operator.NewError(operator.KindUnexpected, operator.OpBuild, "", err)
	}

	return New(db, cfg), nil
}

// Accessor is the BadgerDB operator.Accessor. It owns the database and closes
// it in Close.
type Accessor struct {
	db        *badger.DB
	namespace string
	root      string
	prefix    string
}

// New creates an accessor over an open database.
func New(db *badger.DB, cfg Config) *Accessor {
	root := operator.JoinRoot(cfg.Root, "/")
	return &Accessor{
		db:        db,
		namespace: cfg.Namespace,
		root:      root,
		prefix:    "o:" + cfg.Namespace + ":" + root,
	}
}

func (a *Accessor) Info() operator.Info {
	name := a.namespace
	if name == "" {
		name = "default"
	}
	return operator.Info{Scheme: Scheme, Root: "/" + a.root, Name: name}
}

// Close closes the database.
func (a *Accessor) Close() error {
	return a.db.Close()
}

func (a *Accessor) key(p string) []byte {
	if p == "/" {
		return []byte(a.prefix)
	}
	return []byte(a.prefix + p)
}

func encodeValue(data []byte, modified time.Time) []byte {
	value := make([]byte, headerSize+len(data))
	binary.BigEndian.PutUint64(value, uint64(modified.UnixNano()))
	copy(value[headerSize:], data)
	return value
}

func decodeModified(value []byte) time.Time {
	if len(value) < headerSize {
		return time.Time{}
	}
	return time.Unix(0, int64(binary.BigEndian.Uint64(value)))
}

// metadataOf builds metadata from a stored item without copying its content.
func metadataOf(item *badger.Item) (operator.Metadata, error) {
	md := operator.Metadata{}
	if strings.HasSuffix(string(item.Key()), "/") {
		md.Mode = operator.ModeDir
	} else if size := item.ValueSize(); size > headerSize {
		md.ContentLength = uint64(size - headerSize)
	}
	err := item.Value(func(val []byte) error {
		md.LastModified = decodeModified(val)
		return nil
	})
	return md, err
}

// hasChildren reports whether any key lies strictly below prefix.
func hasChildren(txn *badger.Txn, prefix []byte) bool {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		if len(it.Item().Key()) > len(prefix) {
			return true
		}
	}
	return false
}

func (a *Accessor) Stat(_ context.Context, p string) (operator.Metadata, error) {
	var md operator.Metadata
	err := a.db.View(func(txn *badger.Txn) error {
		key := a.key(p)
		item, err := txn.Get(key)
		if err == nil {
			md, err = metadataOf(item)
			return err
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if operator.IsDirPath(p) && hasChildren(txn, key) {
			md = operator.Metadata{Mode: operator.ModeDir}
			return nil
		}
		return operator.NewError(operator.KindNotFound, operator.OpStat, p, nil)
	})
	if err != nil {
		return operator.Metadata{}, wrap(operator.OpStat, p, err)
	}
	return md, nil
}

func (a *Accessor) List(ctx context.Context, p string) ([]operator.Entry, error) {
	var entries []operator.Entry
	err := a.db.View(func(txn *badger.Txn) error {
		prefix := a.key(p)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		seen := make(map[string]bool)
		count := 0
		for it.Rewind(); it.Valid(); it.Next() {
			if count%100 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			count++

			item := it.Item()
			rest := string(item.Key()[len(prefix):])
			if rest == "" {
				continue
			}

			child, implicit := operator.FirstLevel(p, rest)
			if seen[child] {
				continue
			}
			seen[child] = true

			if implicit {
				entries = append(entries, operator.Entry{
					Path:     child,
					Name:     operator.BaseName(child),
					Metadata: operator.Metadata{Mode: operator.ModeDir},
				})
				continue
			}

			md, err := metadataOf(item)
			if err != nil {
				return err
			}
			entries = append(entries, operator.Entry{Path: child, Name: operator.BaseName(child), Metadata: md})
		}
		return nil
	})
	if err != nil {
		return nil, wrap(operator.OpList, p, err)
	}
	return entries, nil
}

func (a *Accessor) Read(_ context.Context, p string, offset, size int64) ([]byte, error) {
	var data []byte
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(a.key(p))
		if errors.Is(err, badger.ErrKeyNotFound) {
			if hasChildren(txn, a.key(p+"/")) {
				return operator.NewError(operator.KindIsADirectory, operator.OpRead, p, nil)
			}
			return operator.NewError(operator.KindNotFound, operator.OpRead, p, nil)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) >= headerSize {
				val = val[headerSize:]
			}
			data = operator.SliceRange(val, offset, size)
			return nil
		})
	})
	if err != nil {
		return nil, wrap(operator.OpRead, p, err)
	}
	return data, nil
}

func (a *Accessor) Write(_ context.Context, p string, data []byte) error {
	err := a.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(a.key(p + "/")); err == nil {
			return operator.NewError(operator.KindIsADirectory, operator.OpWrite, p, nil)
		}
		return txn.Set(a.key(p), encodeValue(data, time.Now()))
	})
	return wrap(operator.OpWrite, p, err)
}

func (a *Accessor) CreateDir(_ context.Context, p string) error {
	err := a.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(a.key(strings.TrimSuffix(p, "/"))); err == nil {
			return operator.NewError(operator.KindNotADirectory, operator.OpCreateDir, p, nil)
		}
		key := a.key(p)
		if _, err := txn.Get(key); err == nil {
			return nil
		}
		return txn.Set(key, encodeValue(nil, time.Now()))
	})
	return wrap(operator.OpCreateDir, p, err)
}

func (a *Accessor) Delete(_ context.Context, p string) error {
	err := a.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(a.key(p))
	})
	return wrap(operator.OpDelete, p, err)
}

// wrap converts database errors to operator errors, keeping operator errors as-is.
func wrap(op, p string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *operator.Error
	if errors.As(err, &opErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return operator.NewError(operator.KindTimeout, op, p, err)
	}
	return operator.NewError(operator.KindUnexpected, op, p, err)
}

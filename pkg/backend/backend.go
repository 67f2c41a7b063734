// Package backend selects and builds the filesystem adapter serving a fileset.
//
// Adapters register a Factory for the storage location schemes they handle
// (s3, s3a, mem, badger) from their package init function; importing an
// adapter package makes its schemes available to Create:
//
//	import _ "github.com/marmos91/filesetfs/pkg/backend/s3"
//
//	fs, err := backend.Create(ctx, catalog, fileset, cfg, fsCtx)
package backend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/marmos91/filesetfs/pkg/catalog"
	"github.com/marmos91/filesetfs/pkg/config"
	"github.com/marmos91/filesetfs/pkg/filesystem"
	"github.com/marmos91/filesetfs/pkg/location"
)

// Factory builds the filesystem adapter for one fileset.
type Factory func(
	ctx context.Context,
	cat *catalog.Catalog,
	fileset *catalog.Fileset,
	cfg *config.AppConfig,
	fsCtx *filesystem.FileSystemContext,
) (filesystem.PathFileSystem, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes factory available for scheme. Registering the same scheme
// twice panics, like database/sql drivers.
func Register(scheme string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	scheme = strings.ToLower(scheme)
	if factory == nil {
		panic("backend: Register factory is nil for scheme " + scheme)
	}
	if _, dup := factories[scheme]; dup {
		panic("backend: Register called twice for scheme " + scheme)
	}
	factories[scheme] = factory
}

// Schemes returns the registered schemes, sorted.
func Schemes() []string {
	mu.RLock()
	defer mu.RUnlock()

	schemes := make([]string, 0, len(factories))
	for scheme := range factories {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}

// Create builds the adapter registered for the scheme of the fileset storage
// location.
//
// Returns ErrInvalidConfig if the location cannot be parsed and
// ErrNotSupported if no adapter handles its scheme. Adapter errors are
// returned unchanged.
func Create(
	ctx context.Context,
	cat *catalog.Catalog,
	fileset *catalog.Fileset,
	cfg *config.AppConfig,
	fsCtx *filesystem.FileSystemContext,
) (filesystem.PathFileSystem, error) {
	if cat == nil || fileset == nil {
		return nil, filesystem.NewError(filesystem.ErrInvalidArgument, "catalog and fileset are required")
	}

	scheme, err := location.Scheme(fileset.StorageLocation)
	if err != nil {
		return nil, err
	}

	mu.RLock()
	factory, ok := factories[scheme]
	mu.RUnlock()
	if !ok {
		return nil, filesystem.NewError(filesystem.ErrNotSupported,
			"no backend for scheme %q (available: %s)", scheme, strings.Join(Schemes(), ", "))
	}

	fs, err := factory(ctx, cat, fileset, cfg, fsCtx)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

// Load resolves catalogName/filesetName through client and creates its adapter.
func Load(
	ctx context.Context,
	client catalog.Client,
	catalogName, filesetName string,
	cfg *config.AppConfig,
	fsCtx *filesystem.FileSystemContext,
) (filesystem.PathFileSystem, error) {
	cat, err := client.LoadCatalog(ctx, catalogName)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	fileset, err := client.LoadFileset(ctx, catalogName, filesetName)
	if err != nil {
		return nil, fmt.Errorf("load fileset: %w", err)
	}
	return Create(ctx, cat, fileset, cfg, fsCtx)
}

// Package catalog models the metadata a backend adapter needs about where a
// fileset lives: the catalog it belongs to and the fileset itself.
//
// Catalog properties carry backend settings shared by every fileset in the
// catalog (for S3, "s3-region" or "s3-endpoint"); the fileset storage location
// names the bucket and prefix.
package catalog

import (
	"context"
	"maps"

	"github.com/marmos91/filesetfs/pkg/config"
	"github.com/marmos91/filesetfs/pkg/filesystem"
)

// Catalog groups filesets that share storage settings.
type Catalog struct {
	Name     string
	Type     string
	Provider string
	Comment  string

	// Properties holds backend settings such as "s3-region"
	Properties map[string]string
}

// Fileset is a named storage location inside a catalog.
type Fileset struct {
	Name    string
	Type    string
	Comment string

	// StorageLocation is the fileset URI, e.g. "s3://bucket/prefix"
	StorageLocation string

	Properties map[string]string
}

// Client loads catalog and fileset metadata.
type Client interface {
	// LoadCatalog returns the catalog named name.
	// Returns ErrNotFound if no such catalog exists.
	LoadCatalog(ctx context.Context, name string) (*Catalog, error)

	// LoadFileset returns the fileset named fileset in catalog.
	// Returns ErrNotFound if the catalog or the fileset does not exist.
	LoadFileset(ctx context.Context, catalog, fileset string) (*Fileset, error)
}

// StaticClient serves catalogs declared in the application configuration.
//
// Returned values are copies; callers may modify them freely.
type StaticClient struct {
	catalogs map[string]config.CatalogConfig
}

var _ Client = (*StaticClient)(nil)

// NewStaticClient indexes catalogs by name. Later duplicates replace earlier
// ones; configuration validation rejects duplicates before this point.
func NewStaticClient(catalogs []config.CatalogConfig) *StaticClient {
	index := make(map[string]config.CatalogConfig, len(catalogs))
	for _, c := range catalogs {
		index[c.Name] = c
	}
	return &StaticClient{catalogs: index}
}

// Names returns the configured catalog names in no particular order.
func (c *StaticClient) Names() []string {
	names := make([]string, 0, len(c.catalogs))
	for name := range c.catalogs {
		names = append(names, name)
	}
	return names
}

func (c *StaticClient) LoadCatalog(_ context.Context, name string) (*Catalog, error) {
	cfg, ok := c.catalogs[name]
	if !ok {
		return nil, filesystem.NewError(filesystem.ErrNotFound, "catalog %s not found", name)
	}
	return &Catalog{
		Name:       cfg.Name,
		Type:       cfg.Type,
		Provider:   cfg.Provider,
		Comment:    cfg.Comment,
		Properties: cloneProperties(cfg.Properties),
	}, nil
}

func (c *StaticClient) LoadFileset(_ context.Context, catalog, fileset string) (*Fileset, error) {
	cfg, ok := c.catalogs[catalog]
	if !ok {
		return nil, filesystem.NewError(filesystem.ErrNotFound, "catalog %s not found", catalog)
	}
	for _, fs := range cfg.Filesets {
		if fs.Name != fileset {
			continue
		}
		return &Fileset{
			Name:            fs.Name,
			Type:            fs.Type,
			Comment:         fs.Comment,
			StorageLocation: fs.StorageLocation,
			Properties:      cloneProperties(fs.Properties),
		}, nil
	}
	return nil, filesystem.NewError(filesystem.ErrNotFound, "fileset %s not found in catalog %s", fileset, catalog)
}

func cloneProperties(p map[string]string) map[string]string {
	out := make(map[string]string, len(p))
	maps.Copy(out, p)
	return out
}

// Package badger is the filesystem adapter for "badger://" filesets, stored in
// a local BadgerDB database.
//
// The location host is the namespace and the location path the root inside
// it; the database itself is configured through extend_config entries
// prefixed with "badger-":
//
//	extend_config:
//	  badger-dir: /var/lib/filesetfs
//
//	storage_location: badger://archive/2024  => namespace "archive", root "2024"
package badger

import (
	"context"

	"github.com/marmos91/filesetfs/internal/logger"
	"github.com/marmos91/filesetfs/pkg/backend"
	"github.com/marmos91/filesetfs/pkg/catalog"
	"github.com/marmos91/filesetfs/pkg/config"
	"github.com/marmos91/filesetfs/pkg/filesystem"
	"github.com/marmos91/filesetfs/pkg/location"
	"github.com/marmos91/filesetfs/pkg/objectfs"
	"github.com/marmos91/filesetfs/pkg/operator"
	badgersvc "github.com/marmos91/filesetfs/pkg/operator/services/badger"
)

// ConfigPrefix selects the extend_config entries passed to the badger service.
const ConfigPrefix = "badger-"

func init() {
	backend.Register("badger", factory)
}

func factory(
	ctx context.Context,
	cat *catalog.Catalog,
	fileset *catalog.Fileset,
	cfg *config.AppConfig,
	fsCtx *filesystem.FileSystemContext,
) (filesystem.PathFileSystem, error) {
	return New(ctx, fileset, cfg, fsCtx)
}

// FileSystem serves one badger fileset. Operations other than Init go to the
// embedded objectfs filesystem unchanged; Close releases the database.
type FileSystem struct {
	*objectfs.FileSystem
}

var _ filesystem.PathFileSystem = (*FileSystem)(nil)

// Init does nothing; the database is opened by New.
func (fs *FileSystem) Init(ctx context.Context) error {
	return nil
}

// New opens the badger database configured in cfg and returns a filesystem
// over the fileset namespace. Close the returned filesystem to release the
// database.
func New(
	ctx context.Context,
	fileset *catalog.Fileset,
	cfg *config.AppConfig,
	fsCtx *filesystem.FileSystemContext,
) (*FileSystem, error) {
	params, err := resolveParams(fileset, cfg)
	if err != nil {
		return nil, err
	}

	op, err := operator.New(ctx, badgersvc.FromMap(params))
	if err != nil {
		logger.Error("storage operator create failed: %v", err)
		return nil, filesystem.WrapError(filesystem.ErrOperator, err, "storage operator create failed")
	}
	return &FileSystem{FileSystem: objectfs.New(backend.Instrument(op, cfg), cfg, fsCtx)}, nil
}

func resolveParams(fileset *catalog.Fileset, cfg *config.AppConfig) (map[string]string, error) {
	u, err := location.Parse(fileset.StorageLocation)
	if err != nil {
		return nil, err
	}
	root, err := location.Path(fileset.StorageLocation)
	if err != nil {
		return nil, err
	}

	params := map[string]string{}
	if cfg != nil {
		params = config.ExtractPrefixed(cfg.ExtendConfig, ConfigPrefix)
	}
	params["namespace"] = u.Hostname()
	params["root"] = root
	return params, nil
}

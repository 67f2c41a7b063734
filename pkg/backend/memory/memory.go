// Package memory is the filesystem adapter for "mem://" filesets, kept
// entirely in process memory.
//
// The location host names a store shared by every fileset of the process with
// that host; the location path is the fileset root inside it:
//
//	mem://scratch/team-a  => store "scratch", root "team-a"
//
// extend_config entries prefixed with "mem-" are passed to the memory service.
// A "mem-root" entry is a base prefix the location path is nested under.
package memory

import (
	"context"
	"sync"

	"github.com/marmos91/filesetfs/internal/logger"
	"github.com/marmos91/filesetfs/pkg/backend"
	"github.com/marmos91/filesetfs/pkg/catalog"
	"github.com/marmos91/filesetfs/pkg/config"
	"github.com/marmos91/filesetfs/pkg/filesystem"
	"github.com/marmos91/filesetfs/pkg/location"
	"github.com/marmos91/filesetfs/pkg/objectfs"
	"github.com/marmos91/filesetfs/pkg/operator"
	memsvc "github.com/marmos91/filesetfs/pkg/operator/services/memory"
)

// ConfigPrefix selects the extend_config entries passed to the memory service.
const ConfigPrefix = "mem-"

var (
	storesMu sync.Mutex
	stores   = make(map[string]*memsvc.Accessor)
)

func init() {
	backend.Register("mem", factory)
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

// FileSystem serves one in-memory fileset. Operations other than Init go to
// the embedded objectfs filesystem unchanged.
type FileSystem struct {
	*objectfs.FileSystem
}

var _ filesystem.PathFileSystem = (*FileSystem)(nil)

// Init does nothing; the store exists as soon as New returns.
func (fs *FileSystem) Init(ctx context.Context) error {
	return nil
}

// New returns a filesystem over the in-memory store named by the fileset
// location host.
func New(
	ctx context.Context,
	fileset *catalog.Fileset,
	cfg *config.AppConfig,
	fsCtx *filesystem.FileSystemContext,
) (*FileSystem, error) {
	host, params, err := resolveParams(fileset, cfg)
	if err != nil {
		return nil, err
	}

	op, err := operator.New(ctx, memsvc.FromMap(params).Store(sharedStore(host)))
	if err != nil {
		logger.Error("storage operator create failed: %v", err)
		return nil, filesystem.WrapError(filesystem.ErrOperator, err, "storage operator create failed")
	}
	return &FileSystem{FileSystem: objectfs.New(backend.Instrument(op, cfg), cfg, fsCtx)}, nil
}

// resolveParams returns the store host and the memory service parameters.
func resolveParams(fileset *catalog.Fileset, cfg *config.AppConfig) (string, map[string]string, error) {
	u, err := location.Parse(fileset.StorageLocation)
	if err != nil {
		return "", nil, err
	}
	root, err := location.Path(fileset.StorageLocation)
	if err != nil {
		return "", nil, err
	}

	params := map[string]string{}
	if cfg != nil {
		params = config.ExtractPrefixed(cfg.ExtendConfig, ConfigPrefix)
	}
	params["root"] = operator.JoinRoot(params["root"], root)
	return u.Hostname(), params, nil
}

func sharedStore(host string) *memsvc.Accessor {
	storesMu.Lock()
	defer storesMu.Unlock()

	store, ok := stores[host]
	if !ok {
		store = memsvc.New(memsvc.Config{})
		stores[host] = store
	}
	return store
}

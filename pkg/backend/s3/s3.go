// Package s3 is the filesystem adapter for filesets stored in S3.
//
// The adapter derives the S3 service parameters from three sources and then
// delegates every operation to objectfs:
//
//   - extend_config entries prefixed with "s3-" (prefix stripped), e.g.
//     "s3-endpoint", "s3-access_key_id", "s3-max_retries"
//   - the bucket, taken from the host of the fileset storage location
//   - the region, taken from the catalog "s3-region" property, or derived from
//     the host of the catalog "s3-endpoint" property
package s3

import (
	"context"
	"io"

	"github.com/marmos91/filesetfs/internal/logger"
	"github.com/marmos91/filesetfs/pkg/backend"
	"github.com/marmos91/filesetfs/pkg/catalog"
	"github.com/marmos91/filesetfs/pkg/config"
	"github.com/marmos91/filesetfs/pkg/filesystem"
	"github.com/marmos91/filesetfs/pkg/location"
	"github.com/marmos91/filesetfs/pkg/objectfs"
	"github.com/marmos91/filesetfs/pkg/operator"
	s3svc "github.com/marmos91/filesetfs/pkg/operator/services/s3"
)

const (
	// ConfigPrefix selects the extend_config entries passed to the S3 service
	ConfigPrefix = "s3-"

	// RegionProperty is the catalog property holding the bucket region
	RegionProperty = "s3-region"

	// EndpointProperty is the catalog property holding the S3 endpoint URL
	EndpointProperty = "s3-endpoint"
)

func init() {
	backend.Register("s3", factory)
	backend.Register("s3a", factory)
}

func factory(
	ctx context.Context,
	cat *catalog.Catalog,
	fileset *catalog.Fileset,
	cfg *config.AppConfig,
	fsCtx *filesystem.FileSystemContext,
) (filesystem.PathFileSystem, error) {
	return New(ctx, cat, fileset, cfg, fsCtx)
}

// FileSystem serves one S3 fileset.
type FileSystem struct {
	delegate filesystem.PathFileSystem
}

var _ filesystem.PathFileSystem = (*FileSystem)(nil)

// New builds the S3 storage operator for fileset and wraps it in a filesystem.
//
// Returns ErrInvalidConfig when the bucket or region cannot be resolved and
// ErrOperator when the operator rejects the resolved parameters. Nothing is
// sent to S3 here.
func New(
	ctx context.Context,
	cat *catalog.Catalog,
	fileset *catalog.Fileset,
	cfg *config.AppConfig,
	fsCtx *filesystem.FileSystemContext,
) (*FileSystem, error) {
	params, err := resolveParams(cat, fileset, cfg)
	if err != nil {
		return nil, err
	}

	op, err := operator.New(ctx, s3svc.FromMap(params))
	if err != nil {
		logger.Error("storage operator create failed: %v", err)
		return nil, filesystem.WrapError(filesystem.ErrOperator, err, "storage operator create failed")
	}
	op = backend.Instrument(op, cfg)

	logger.Debug("s3: fileset %s/%s served from bucket %s (%s)",
		cat.Name, fileset.Name, params["bucket"], params["region"])

	return &FileSystem{delegate: objectfs.New(op, cfg, fsCtx)}, nil
}

// resolveParams builds the S3 service parameters. Derived bucket and region
// replace any "s3-bucket" or "s3-region" entries of extend_config.
func resolveParams(cat *catalog.Catalog, fileset *catalog.Fileset, cfg *config.AppConfig) (map[string]string, error) {
	params := ExtractS3Config(cfg)

	bucket, err := location.ExtractBucket(fileset.StorageLocation)
	if err != nil {
		return nil, err
	}
	params["bucket"] = bucket

	region, err := ResolveRegion(cat)
	if err != nil {
		return nil, err
	}
	params["region"] = region

	return params, nil
}

// ExtractS3Config returns the extend_config entries prefixed with "s3-", with
// the prefix stripped. A nil cfg yields an empty map.
func ExtractS3Config(cfg *config.AppConfig) map[string]string {
	if cfg == nil {
		return map[string]string{}
	}
	return config.ExtractPrefixed(cfg.ExtendConfig, ConfigPrefix)
}

// ResolveRegion returns the region of the buckets in cat.
//
// The "s3-region" property wins; otherwise the region is the second
// dot-separated host segment of the "s3-endpoint" property
// ("https://s3.eu-west-1.amazonaws.com" => "eu-west-1"). Returns
// ErrInvalidConfig when neither property is set or the endpoint has no region
// segment.
func ResolveRegion(cat *catalog.Catalog) (string, error) {
	if region, ok := cat.Properties[RegionProperty]; ok {
		return region, nil
	}
	if endpoint, ok := cat.Properties[EndpointProperty]; ok {
		return location.ExtractRegion(endpoint)
	}
	return "", filesystem.NewError(filesystem.ErrInvalidConfig, "cannot retrieve region for catalog %s", cat.Name)
}

// Close releases the delegate resources, if it holds any.
func (fs *FileSystem) Close() error {
	if c, ok := fs.delegate.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (fs *FileSystem) Init(ctx context.Context) error {
	return nil
}

func (fs *FileSystem) Stat(ctx context.Context, path string) (filesystem.FileStat, error) {
	return fs.delegate.Stat(ctx, path)
}

func (fs *FileSystem) ReadDir(ctx context.Context, path string) ([]filesystem.FileStat, error) {
	return fs.delegate.ReadDir(ctx, path)
}

func (fs *FileSystem) OpenFile(ctx context.Context, path string, flags filesystem.OpenFileFlags) (*filesystem.OpenedFile, error) {
	return fs.delegate.OpenFile(ctx, path, flags)
}

func (fs *FileSystem) OpenDir(ctx context.Context, path string, flags filesystem.OpenFileFlags) (*filesystem.OpenedFile, error) {
	return fs.delegate.OpenDir(ctx, path, flags)
}

func (fs *FileSystem) CreateFile(ctx context.Context, path string, flags filesystem.OpenFileFlags) (*filesystem.OpenedFile, error) {
	return fs.delegate.CreateFile(ctx, path, flags)
}

func (fs *FileSystem) CreateDir(ctx context.Context, path string) (filesystem.FileStat, error) {
	return fs.delegate.CreateDir(ctx, path)
}

func (fs *FileSystem) SetAttr(ctx context.Context, path string, stat filesystem.FileStat, flush bool) error {
	return fs.delegate.SetAttr(ctx, path, stat, flush)
}

func (fs *FileSystem) RemoveFile(ctx context.Context, path string) error {
	return fs.delegate.RemoveFile(ctx, path)
}

func (fs *FileSystem) RemoveDir(ctx context.Context, path string) error {
	return fs.delegate.RemoveDir(ctx, path)
}

func (fs *FileSystem) GetCapacity() (filesystem.FileSystemCapacity, error) {
	return fs.delegate.GetCapacity()
}

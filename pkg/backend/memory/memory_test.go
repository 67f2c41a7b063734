package memory

import (
	"context"
	"testing"

	"github.com/marmos91/filesetfs/pkg/backend"
	"github.com/marmos91/filesetfs/pkg/catalog"
	"github.com/marmos91/filesetfs/pkg/config"
	"github.com/marmos91/filesetfs/pkg/filesystem"
	fstesting "github.com/marmos91/filesetfs/pkg/filesystem/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFileSystem(t *testing.T) {
	suite := &fstesting.PathFileSystemTestSuite{
		NewFS: func(t *testing.T) filesystem.PathFileSystem {
			// Subtest names give every test its own root
			fs, err := New(context.Background(), &catalog.Fileset{StorageLocation: "mem://" + t.Name() + "/data"}, nil, nil)
			require.NoError(t, err)
			return fs
		},
	}
	suite.Run(t)
}

func TestMemoryFileSystem_SharedHost(t *testing.T) {
	ctx := context.Background()

	writer, err := New(ctx, &catalog.Fileset{StorageLocation: "mem://shared/a"}, nil, nil)
	require.NoError(t, err)
	reader, err := New(ctx, &catalog.Fileset{StorageLocation: "mem://shared/a"}, nil, nil)
	require.NoError(t, err)
	other, err := New(ctx, &catalog.Fileset{StorageLocation: "mem://shared/b"}, nil, nil)
	require.NoError(t, err)

	_, err = writer.CreateDir(ctx, "/visible")
	require.NoError(t, err)

	stat, err := reader.Stat(ctx, "/visible")
	require.NoError(t, err)
	assert.True(t, stat.IsDir())

	_, err = other.Stat(ctx, "/visible")
	assert.True(t, filesystem.IsCode(err, filesystem.ErrNotFound))
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, backend.Schemes(), "mem")

	fs, err := backend.Create(context.Background(), &catalog.Catalog{Name: "c"},
		&catalog.Fileset{StorageLocation: "mem://registered"}, nil, nil)
	require.NoError(t, err)
	assert.NoError(t, fs.Init(context.Background()))
}

func TestResolveParams(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.ExtendConfig = map[string]string{
		"mem-root":  "base",
		"s3-region": "ignored",
	}

	host, params, err := resolveParams(&catalog.Fileset{StorageLocation: "mem://scratch:1/team-a"}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "scratch", host)
	assert.Equal(t, map[string]string{"root": "base/team-a"}, params)

	host, params, err = resolveParams(&catalog.Fileset{StorageLocation: "mem://scratch"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "scratch", host)
	assert.Equal(t, map[string]string{"root": ""}, params)
}

func TestMemoryFileSystem_ConfigRoot(t *testing.T) {
	ctx := context.Background()
	cfg := config.GetDefaultConfig()
	cfg.ExtendConfig = map[string]string{"mem-root": "base"}

	fs, err := New(ctx, &catalog.Fileset{StorageLocation: "mem://config-root/data"}, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "/base/data/", fs.Operator().Info().Root)

	_, err = fs.CreateDir(ctx, "/x")
	require.NoError(t, err)

	whole, err := New(ctx, &catalog.Fileset{StorageLocation: "mem://config-root"}, nil, nil)
	require.NoError(t, err)
	stat, err := whole.Stat(ctx, "/base/data/x")
	require.NoError(t, err)
	assert.True(t, stat.IsDir())
}

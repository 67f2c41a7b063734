package location

import (
	"testing"

	"github.com/marmos91/filesetfs/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBucket(t *testing.T) {
	bucket, err := ExtractBucket("s3://bucket/path/to/file")
	require.NoError(t, err)
	assert.Equal(t, "bucket", bucket)

	bucket, err = ExtractBucket("s3a://my-bucket")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)

	bucket, err = ExtractBucket("s3://my-bucket:9000/data")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)
}

func TestExtractBucket_NoHost(t *testing.T) {
	for _, loc := range []string{"bucket/path", "/only/a/path", "s3:///path"} {
		t.Run(loc, func(t *testing.T) {
			_, err := ExtractBucket(loc)
			require.Error(t, err)
			assert.True(t, filesystem.IsCode(err, filesystem.ErrInvalidConfig))
			assert.Contains(t, err.Error(), "Invalid fileset location without bucket")
		})
	}
}

func TestExtractBucket_ParseFailure(t *testing.T) {
	_, err := ExtractBucket("s3://bad host/%zz")
	require.Error(t, err)
	assert.True(t, filesystem.IsCode(err, filesystem.ErrInvalidConfig))
}

func TestExtractRegion(t *testing.T) {
	tests := []struct {
		location string
		region   string
	}{
		{"http://s3.ap-southeast-2.amazonaws.com", "ap-southeast-2"},
		{"https://s3.us-west-2.amazonaws.com:443", "us-west-2"},
		{"http://a.b", "b"},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			region, err := ExtractRegion(tt.location)
			require.NoError(t, err)
			assert.Equal(t, tt.region, region)
		})
	}
}

func TestExtractRegion_Invalid(t *testing.T) {
	for _, loc := range []string{"http://localhost:4566", "no-host", ""} {
		t.Run(loc, func(t *testing.T) {
			_, err := ExtractRegion(loc)
			require.Error(t, err)
			assert.True(t, filesystem.IsCode(err, filesystem.ErrInvalidConfig))
			assert.Contains(t, err.Error(), "expected region in host")
		})
	}
}

func TestSchemeAndPath(t *testing.T) {
	scheme, err := Scheme("S3://bucket/a/b/")
	require.NoError(t, err)
	assert.Equal(t, "s3", scheme)

	p, err := Path("S3://bucket/a/b/")
	require.NoError(t, err)
	assert.Equal(t, "a/b", p)

	scheme, err = Scheme("relative/path")
	require.NoError(t, err)
	assert.Empty(t, scheme)
}

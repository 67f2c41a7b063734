// Package location parses fileset storage locations and extracts the
// addressing parts backends need from them.
//
// A storage location is a URI such as "s3://bucket/path/to/fileset". The host
// component names the bucket; for endpoint URLs such as
// "http://s3.ap-southeast-2.amazonaws.com" the second dot-separated segment of
// the host names the region.
package location

import (
	"net/url"
	"strings"

	"github.com/marmos91/filesetfs/pkg/filesystem"
)

// Parse parses location as a URI.
//
// A location without "://" still parses, but has no host. Parse failures are
// reported as filesystem.ErrInvalidConfig.
func Parse(location string) (*url.URL, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, filesystem.WrapError(filesystem.ErrInvalidConfig, err, "Invalid fileset location: %s", location)
	}
	return u, nil
}

// ExtractBucket returns the host name of location, without any port.
//
// Example: "s3://bucket/path/to/file" => "bucket".
func ExtractBucket(location string) (string, error) {
	u, err := Parse(location)
	if err != nil {
		return "", err
	}
	bucket := u.Hostname()
	if bucket == "" {
		return "", filesystem.NewError(filesystem.ErrInvalidConfig, "Invalid fileset location without bucket: %s", location)
	}
	return bucket, nil
}

// ExtractRegion returns the second dot-separated segment of the host of location.
//
// Example: "http://s3.ap-southeast-2.amazonaws.com" => "ap-southeast-2".
//
// The segment is taken positionally and is not validated against known
// region names.
func ExtractRegion(location string) (string, error) {
	u, err := Parse(location)
	if err != nil {
		return "", err
	}
	host := u.Hostname()
	if host == "" {
		return "", filesystem.NewError(filesystem.ErrInvalidConfig, "Invalid location: expected region in host, got %s", location)
	}
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return "", filesystem.NewError(filesystem.ErrInvalidConfig, "Invalid location: expected region in host, got %s", location)
	}
	return parts[1], nil
}

// Scheme returns the lower-cased scheme of location, or "" when it has none.
func Scheme(location string) (string, error) {
	u, err := Parse(location)
	if err != nil {
		return "", err
	}
	return strings.ToLower(u.Scheme), nil
}

// Path returns the path component of location without leading or trailing
// slashes. "s3://bucket/a/b/" => "a/b".
func Path(location string) (string, error) {
	u, err := Parse(location)
	if err != nil {
		return "", err
	}
	return strings.Trim(u.Path, "/"), nil
}

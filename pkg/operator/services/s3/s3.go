// Package s3 implements the storage operator service for Amazon S3 and
// S3-compatible object stores (MinIO, Localstack, Ceph RGW).
//
// Keys are the operator path prefixed by the configured root. Directories are
// zero-byte objects whose key ends with "/", and listings use ListObjectsV2
// with "/" as delimiter, so directories created by other S3 clients (common
// prefixes without a marker object) are visible too.
package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/filesetfs/pkg/operator"
)

// Scheme is the service scheme.
const Scheme = "s3"

// Config holds the service parameters.
//
// Every field is decoded from the flat parameter map handed to FromMap, using
// the mapstructure tag as key.
type Config struct {
	// Bucket is the bucket holding the objects
	Bucket string `mapstructure:"bucket" validate:"required"`

	// Region is the bucket region (e.g., "us-east-1")
	Region string `mapstructure:"region" validate:"required"`

	// Endpoint overrides the service endpoint (MinIO, Localstack, ...)
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`

	// Root is the key prefix every path is resolved against
	Root string `mapstructure:"root"`

	// AccessKeyID and SecretAccessKey select static credentials; when empty
	// the default AWS credential chain is used
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" validate:"required_with=AccessKeyID"`
	SessionToken    string `mapstructure:"session_token"`

	// EnableVirtualHostStyle keeps virtual-hosted addressing with a custom
	// endpoint. Custom endpoints use path-style addressing by default.
	EnableVirtualHostStyle bool `mapstructure:"enable_virtual_host_style"`

	// DisableConfigLoad skips environment and shared config files
	DisableConfigLoad bool `mapstructure:"disable_config_load"`

	// MaxRetries is the maximum number of attempts per request (0 = SDK default)
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0"`
}

// Builder builds S3 accessors.
type Builder struct {
	params map[string]string
}

// FromMap creates a Builder from flat parameters. See Config for the keys.
// Parameters are only checked by Build.
func FromMap(params map[string]string) *Builder {
	copied := make(map[string]string, len(params))
	for k, v := range params {
		copied[k] = v
	}
	return &Builder{params: copied}
}

func (b *Builder) Scheme() string { return Scheme }

// Config decodes and validates the builder parameters.
func (b *Builder) Config() (Config, error) {
	var cfg Config
	if err := operator.DecodeParams(Scheme, b.params, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Build creates the S3 client and accessor.
//
// No request is sent to S3: a wrong bucket or unreachable endpoint surfaces on
// the first operation, not here.
func (b *Builder) Build(ctx context.Context) (operator.Accessor, error) {
	cfg, err := b.Config()
	if err != nil {
		return nil, err
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, operator.NewError(operator.KindConfigInvalid, operator.OpBuild, "", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Path-style addressing for MinIO/Localstack compatibility
			o.UsePathStyle = !cfg.EnableVirtualHostStyle
		}
	})

	return NewWithClient(client, cfg.Bucket, cfg.Root), nil
}

// loadAWSConfig builds the SDK configuration for cfg.
func loadAWSConfig(ctx context.Context, cfg Config) (aws.Config, error) {
	var provider aws.CredentialsProvider
	if cfg.AccessKeyID != "" {
		provider = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)
	}

	var retryer func() aws.Retryer
	if cfg.MaxRetries > 0 {
		retryer = func() aws.Retryer {
			return retry.NewStandard(func(o *retry.StandardOptions) {
				o.MaxAttempts = cfg.MaxRetries
			})
		}
	}

	if cfg.DisableConfigLoad {
		awsCfg := aws.Config{Region: cfg.Region, Credentials: provider}
		if provider == nil {
			awsCfg.Credentials = aws.AnonymousCredentials{}
		}
		if retryer != nil {
			awsCfg.Retryer = retryer
		}
		return awsCfg, nil
	}

	opts := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(cfg.Region),
	}
	if provider != nil {
		opts = append(opts, awsConfig.WithCredentialsProvider(provider))
	}
	if retryer != nil {
		opts = append(opts, awsConfig.WithRetryer(retryer))
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/marmos91/filesetfs/pkg/operator"
)

// API is the subset of the S3 client used by the accessor.
type API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Accessor is the S3 operator.Accessor.
type Accessor struct {
	client API
	bucket string

	// root is the key prefix, empty or ending with "/"
	root string
}

// NewWithClient creates an accessor over an existing client.
func NewWithClient(client API, bucket, root string) *Accessor {
	return &Accessor{
		client: client,
		bucket: bucket,
		root:   operator.JoinRoot(root, "/"),
	}
}

func (a *Accessor) Info() operator.Info {
	return operator.Info{Scheme: Scheme, Root: "/" + a.root, Name: a.bucket}
}

func (a *Accessor) key(p string) string {
	return operator.JoinRoot(a.root, p)
}

// relPath converts an object key back to an operator path.
func (a *Accessor) relPath(key string) string {
	rel := strings.TrimPrefix(key, a.root)
	if rel == "" {
		return "/"
	}
	return rel
}

func (a *Accessor) Stat(ctx context.Context, p string) (operator.Metadata, error) {
	key := a.key(p)

	out, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		md := operator.Metadata{
			ContentLength: uint64(aws.ToInt64(out.ContentLength)),
			LastModified:  aws.ToTime(out.LastModified),
			ETag:          aws.ToString(out.ETag),
		}
		if operator.IsDirPath(p) {
			md.Mode = operator.ModeDir
			md.ContentLength = 0
		}
		return md, nil
	}

	mapped := mapError(operator.OpStat, p, err)
	if !operator.IsDirPath(p) || !operator.IsNotFound(mapped) {
		return operator.Metadata{}, mapped
	}

	// No marker object: the directory exists if any key lies below it
	list, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(a.bucket),
		Prefix:  aws.String(key),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return operator.Metadata{}, mapError(operator.OpStat, p, err)
	}
	if len(list.Contents) == 0 && len(list.CommonPrefixes) == 0 {
		return operator.Metadata{}, mapped
	}
	return operator.Metadata{Mode: operator.ModeDir}, nil
}

func (a *Accessor) List(ctx context.Context, p string) ([]operator.Entry, error) {
	prefix := a.key(p)

	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(a.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	var entries []operator.Entry
	for paginator.HasMorePages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapError(operator.OpList, p, err)
		}

		for _, cp := range page.CommonPrefixes {
			dir := a.relPath(aws.ToString(cp.Prefix))
			entries = append(entries, operator.Entry{
				Path:     dir,
				Name:     operator.BaseName(dir),
				Metadata: operator.Metadata{Mode: operator.ModeDir},
			})
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				continue
			}
			rel := a.relPath(key)
			md := operator.Metadata{
				ContentLength: uint64(aws.ToInt64(obj.Size)),
				LastModified:  aws.ToTime(obj.LastModified),
				ETag:          aws.ToString(obj.ETag),
			}
			if operator.IsDirPath(rel) {
				md.Mode = operator.ModeDir
			}
			entries = append(entries, operator.Entry{Path: rel, Name: operator.BaseName(rel), Metadata: md})
		}
	}

	return entries, nil
}

func (a *Accessor) Read(ctx context.Context, p string, offset, size int64) ([]byte, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(p)),
	}
	// S3 ranges are inclusive
	switch {
	case size > 0:
		input.Range = aws.String(fmt.Sprintf("bytes=%d-%d", offset, offset+size-1))
	case offset > 0:
		input.Range = aws.String(fmt.Sprintf("bytes=%d-", offset))
	}

	out, err := a.client.GetObject(ctx, input)
	if err != nil {
		if isInvalidRange(err) {
			// Offset at or beyond the end of the object
			return []byte{}, nil
		}
		return nil, mapError(operator.OpRead, p, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, mapError(operator.OpRead, p, err)
	}
	return data, nil
}

func (a *Accessor) Write(ctx context.Context, p string, data []byte) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(a.key(p)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return mapError(operator.OpWrite, p, err)
	}
	return nil
}

func (a *Accessor) CreateDir(ctx context.Context, p string) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(a.key(p)),
		Body:          bytes.NewReader(nil),
		ContentLength: aws.Int64(0),
	})
	if err != nil {
		return mapError(operator.OpCreateDir, p, err)
	}
	return nil
}

func (a *Accessor) Delete(ctx context.Context, p string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(p)),
	})
	if err != nil {
		mapped := mapError(operator.OpDelete, p, err)
		if operator.IsNotFound(mapped) {
			return nil
		}
		return mapped
	}
	return nil
}

func isInvalidRange(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "InvalidRange"
}

// mapError classifies an SDK error into an operator error kind.
func mapError(op, p string, err error) error {
	var (
		noSuchKey *types.NoSuchKey
		notFound  *types.NotFound
	)
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return operator.NewError(operator.KindNotFound, op, p, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return operator.NewError(operator.KindNotFound, op, p, err)
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return operator.NewError(operator.KindPermissionDenied, op, p, err)
		case "SlowDown", "Throttling", "ThrottlingException", "RequestLimitExceeded":
			return operator.NewError(operator.KindRateLimited, op, p, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return operator.NewError(operator.KindTimeout, op, p, err)
	}
	return operator.NewError(operator.KindUnexpected, op, p, err)
}

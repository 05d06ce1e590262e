package migstate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const contentTypeJSON = "application/json"

// S3API is the subset of the S3 client used by S3Backend.
// *s3.Client satisfies it; tests can substitute a stub.
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Backend stores the document as a single object in an S3 bucket.
// Write relies on S3's atomic PUT: readers see either the old or the new
// document, never a partial one. A provider "no such key" response maps to
// not-found; any other failure (connectivity, authorization, missing
// bucket) maps to *BackendUnavailableError.
type S3Backend struct {
	client S3API
	bucket string
	key    string
}

// NewS3Backend creates a backend for the given bucket and object key.
func NewS3Backend(client S3API, bucket, key string) *S3Backend {
	return &S3Backend{
		client: client,
		bucket: bucket,
		key:    key,
	}
}

func (b *S3Backend) Exists(ctx context.Context) (bool, error) {
	// Head avoids fetching the body just to probe for presence, and works
	// around s3-compatible services that mishandle Get on a missing key.
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &b.bucket,
		Key:    &b.key,
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, &BackendUnavailableError{Backend: "s3", Op: "exists", Location: b.String(), Cause: err}
	}
	return true, nil
}

func (b *S3Backend) Read(ctx context.Context) ([]byte, error) {
	output, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &b.bucket,
		Key:    &b.key,
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, b.String())
		}
		return nil, &BackendUnavailableError{Backend: "s3", Op: "read", Location: b.String(), Cause: err}
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, &BackendUnavailableError{Backend: "s3", Op: "read", Location: b.String(), Cause: err}
	}
	return data, nil
}

func (b *S3Backend) Write(ctx context.Context, data []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &b.bucket,
		Key:           &b.key,
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentTypeJSON),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return &BackendUnavailableError{Backend: "s3", Op: "write", Location: b.String(), Cause: err}
	}
	return nil
}

func (b *S3Backend) String() string {
	return fmt.Sprintf("s3://%s/%s", b.bucket, b.key)
}

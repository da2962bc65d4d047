package storage

import (
	"context"
	"errors"
)

// ErrMissingBucket is returned when storage is used without a configured bucket.
var ErrMissingBucket = errors.New("storage: bucket must be provided")

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the S3-compatible operations used for snapshot
// exports and report uploads.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
	UploadObject(ctx context.Context, key string, data []byte) error
}

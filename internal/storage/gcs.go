package storage

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/googleapis/google-cloud-go-testing/storage/stiface"
	"google.golang.org/api/iterator"
)

// GCSClient binds a shared GCS client to one bucket handle.
//
// Unlike S3, deleting or reading a missing object fails with
// storage.ErrObjectNotExist; the error is returned unchanged.
type GCSClient struct {
	bucket stiface.BucketHandle
}

func NewGCSClient(client stiface.Client, bucket string) *GCSClient {
	if client == nil {
		return &GCSClient{}
	}
	return &GCSClient{bucket: client.Bucket(bucket)}
}

func (c *GCSClient) PutObject(ctx context.Context, key string, data []byte) error {
	if c.bucket == nil {
		return errors.New("gcs bucket handle is not configured")
	}
	if err := validateKey(key); err != nil {
		return err
	}

	w := c.bucket.Object(key).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	// The object is committed on Close; its error is the upload result.
	return w.Close()
}

func (c *GCSClient) GetObject(ctx context.Context, key string) ([]byte, error) {
	if c.bucket == nil {
		return nil, errors.New("gcs bucket handle is not configured")
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}

	r, err := c.bucket.Object(key).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

func (c *GCSClient) DeleteObject(ctx context.Context, key string) error {
	if c.bucket == nil {
		return errors.New("gcs bucket handle is not configured")
	}
	if err := validateKey(key); err != nil {
		return err
	}
	return c.bucket.Object(key).Delete(ctx)
}

func (c *GCSClient) ListKeys(ctx context.Context) ([]string, error) {
	if c.bucket == nil {
		return nil, errors.New("gcs bucket handle is not configured")
	}

	keys := make([]string, 0)
	it := c.bucket.Objects(ctx, &storage.Query{})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

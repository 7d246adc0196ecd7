package storage

import (
	"context"
	"fmt"

	"pantry/internal/config"
)

// Gateway dispatches object operations to the S3 or GCS backend. The
// settings function is consulted on every call, so switching the bucket type
// takes effect on the next request without a restart.
type Gateway struct {
	settings func() config.ObjectStorageConfig
	s3       Opener
	gcs      Opener
}

func NewGateway(settings func() config.ObjectStorageConfig, s3 Opener, gcs Opener) *Gateway {
	return &Gateway{
		settings: settings,
		s3:       s3,
		gcs:      gcs,
	}
}

// ObjectPath renders the fully-qualified locator for name, e.g. s3://bucket/name.
func ObjectPath(bucketType config.BucketType, bucket, name string) string {
	return fmt.Sprintf("%s://%s/%s", bucketType.Scheme(), bucket, name)
}

// BucketType reports the configured backend without touching the network.
func (g *Gateway) BucketType() config.BucketType {
	return g.current().Type()
}

func (g *Gateway) ListObjects(ctx context.Context) ([]Object, error) {
	bucketType, bucket, store, err := g.open(ctx)
	if err != nil {
		return nil, err
	}

	keys, err := store.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	objects := make([]Object, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, Object{
			Name: key,
			Path: ObjectPath(bucketType, bucket, key),
		})
	}
	return objects, nil
}

// PutObject writes content under name, replacing any existing object, and
// returns the object's path.
func (g *Gateway) PutObject(ctx context.Context, name string, content []byte) (string, error) {
	bucketType, bucket, store, err := g.open(ctx)
	if err != nil {
		return "", err
	}
	if err := store.PutObject(ctx, name, content); err != nil {
		return "", err
	}
	return ObjectPath(bucketType, bucket, name), nil
}

func (g *Gateway) DeleteObject(ctx context.Context, name string) (string, error) {
	bucketType, bucket, store, err := g.open(ctx)
	if err != nil {
		return "", err
	}
	if err := store.DeleteObject(ctx, name); err != nil {
		return "", err
	}
	return ObjectPath(bucketType, bucket, name), nil
}

func (g *Gateway) GetObject(ctx context.Context, name string) ([]byte, error) {
	_, _, store, err := g.open(ctx)
	if err != nil {
		return nil, err
	}
	return store.GetObject(ctx, name)
}

func (g *Gateway) current() config.ObjectStorageConfig {
	if g.settings == nil {
		return config.ObjectStorageConfig{}
	}
	return g.settings()
}

func (g *Gateway) open(ctx context.Context) (config.BucketType, string, ObjectStore, error) {
	settings := g.current()
	bucketType := settings.Type()

	opener := g.s3
	if bucketType == config.BucketTypeGCS {
		opener = g.gcs
	}
	if opener == nil {
		return bucketType, "", nil, fmt.Errorf("%s backend is not configured", bucketType)
	}

	store, err := opener.Open(ctx, settings.Bucket)
	if err != nil {
		return bucketType, "", nil, err
	}
	return bucketType, settings.Bucket, store, nil
}

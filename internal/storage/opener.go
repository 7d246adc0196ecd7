package storage

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/googleapis/google-cloud-go-testing/storage/stiface"
	"google.golang.org/api/option"

	"pantry/internal/config"
)

// Opener binds a backend client to the bucket resolved for one call.
type Opener interface {
	Open(ctx context.Context, bucket string) (ObjectStore, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, bucket string) (ObjectStore, error)

func (f OpenerFunc) Open(ctx context.Context, bucket string) (ObjectStore, error) {
	return f(ctx, bucket)
}

// S3Opener builds the S3 SDK client on first use and shares it afterwards.
type S3Opener struct {
	region     string
	endpoint   string
	loadConfig func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error)

	mu     sync.Mutex
	client *s3.Client
}

func NewS3Opener(cfg config.ObjectStorageConfig) *S3Opener {
	return &S3Opener{
		region:     cfg.S3Region,
		endpoint:   cfg.S3Endpoint,
		loadConfig: awsconfig.LoadDefaultConfig,
	}
}

func (o *S3Opener) Open(ctx context.Context, bucket string) (ObjectStore, error) {
	client, err := o.sdkClient(ctx)
	if err != nil {
		return nil, err
	}
	return NewS3Client(client, bucket), nil
}

func (o *S3Opener) sdkClient(ctx context.Context) (*s3.Client, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.client != nil {
		return o.client, nil
	}

	var opts []func(*awsconfig.LoadOptions) error
	if o.region != "" {
		opts = append(opts, awsconfig.WithRegion(o.region))
	}
	awsCfg, err := o.loadConfig(context.WithoutCancel(ctx), opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	o.client = s3.NewFromConfig(awsCfg, func(opt *s3.Options) {
		if o.endpoint != "" {
			opt.BaseEndpoint = aws.String(o.endpoint)
			opt.UsePathStyle = true
		}
	})
	return o.client, nil
}

// GCSOpener builds the GCS client on first use and shares it afterwards.
type GCSOpener struct {
	newClient func(context.Context) (stiface.Client, error)

	mu     sync.Mutex
	client stiface.Client
}

func NewGCSOpener(cfg config.ObjectStorageConfig) *GCSOpener {
	credentialsFile := cfg.GCSCredentialsFile
	return &GCSOpener{
		newClient: func(ctx context.Context) (stiface.Client, error) {
			var opts []option.ClientOption
			if credentialsFile != "" {
				opts = append(opts, option.WithCredentialsFile(credentialsFile))
			}
			client, err := storage.NewClient(ctx, opts...)
			if err != nil {
				return nil, err
			}
			return stiface.AdaptClient(client), nil
		},
	}
}

func (o *GCSOpener) Open(ctx context.Context, bucket string) (ObjectStore, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.client == nil {
		client, err := o.newClient(context.WithoutCancel(ctx))
		if err != nil {
			return nil, fmt.Errorf("create gcs client: %w", err)
		}
		o.client = client
	}
	return NewGCSClient(o.client, bucket), nil
}

// Close releases the shared GCS client if one was created.
func (o *GCSOpener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.client == nil {
		return nil
	}
	err := o.client.Close()
	o.client = nil
	return err
}

package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/transfermanager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"pantry/internal/config"
)

type fakeUploader struct {
	lastInput *transfermanager.UploadObjectInput
	err       error
}

func (f *fakeUploader) UploadObject(_ context.Context, input *transfermanager.UploadObjectInput, _ ...func(*transfermanager.Options)) (*transfermanager.UploadObjectOutput, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &transfermanager.UploadObjectOutput{}, nil
}

type fakeS3API struct {
	getFn    func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	deleteFn func(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	listFn   func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

func (f *fakeS3API) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getFn == nil {
		return nil, errors.New("unexpected get object call")
	}
	return f.getFn(ctx, params, optFns...)
}

func (f *fakeS3API) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteFn == nil {
		return nil, errors.New("unexpected delete object call")
	}
	return f.deleteFn(ctx, params, optFns...)
}

func (f *fakeS3API) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listFn == nil {
		return nil, errors.New("unexpected list objects call")
	}
	return f.listFn(ctx, params, optFns...)
}

type paginatorStep struct {
	page *s3.ListObjectsV2Output
	err  error
}

type fakePaginator struct {
	steps []paginatorStep
	index int
}

func (p *fakePaginator) HasMorePages() bool {
	return p.index < len(p.steps)
}

func (p *fakePaginator) NextPage(_ context.Context, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if p.index >= len(p.steps) {
		return nil, errors.New("no more pages")
	}
	step := p.steps[p.index]
	p.index++
	if step.err != nil {
		return nil, step.err
	}
	return step.page, nil
}

type errReadCloser struct{}

func (errReadCloser) Read(_ []byte) (int, error) { return 0, errors.New("read failure") }
func (errReadCloser) Close() error               { return nil }

func TestAWSListObjectsV2PaginatorNilInner(t *testing.T) {
	p := &awsListObjectsV2Paginator{}
	if p.HasMorePages() {
		t.Fatal("expected no pages when paginator is nil")
	}
	if _, err := p.NextPage(context.Background()); err == nil || !strings.Contains(err.Error(), "s3 paginator is not configured") {
		t.Fatalf("expected nil paginator error, got: %v", err)
	}
}

func TestS3PutObjectSuccess(t *testing.T) {
	uploader := &fakeUploader{}
	c := &S3Client{
		uploader: uploader,
		bucket:   "bucket",
	}

	if err := c.PutObject(context.Background(), "myfile.txt", []byte("payload")); err != nil {
		t.Fatalf("put object failed: %v", err)
	}
	if uploader.lastInput == nil {
		t.Fatal("expected upload input to be captured")
	}
	if got := *uploader.lastInput.Bucket; got != "bucket" {
		t.Fatalf("bucket mismatch: got %q", got)
	}
	if got := *uploader.lastInput.Key; got != "myfile.txt" {
		t.Fatalf("key mismatch: got %q", got)
	}
	if got := *uploader.lastInput.ContentLength; got != int64(len("payload")) {
		t.Fatalf("content length mismatch: got %d", got)
	}

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(uploader.lastInput.Body); err != nil {
		t.Fatalf("read upload body: %v", err)
	}
	if got := buf.String(); got != "payload" {
		t.Fatalf("body mismatch: got %q", got)
	}
}

func TestS3PutObjectErrors(t *testing.T) {
	c := &S3Client{bucket: "bucket"}
	if err := c.PutObject(context.Background(), "key", []byte("x")); err == nil || !strings.Contains(err.Error(), "s3 uploader is not configured") {
		t.Fatalf("expected missing uploader error, got: %v", err)
	}

	c.uploader = &fakeUploader{err: errors.New("S3 upload error")}
	if err := c.PutObject(context.Background(), "  ", []byte("x")); err == nil || !strings.Contains(err.Error(), "invalid object key") {
		t.Fatalf("expected key validation error, got: %v", err)
	}

	// SDK errors reach the caller unmodified.
	if err := c.PutObject(context.Background(), "key", []byte("x")); err == nil || err.Error() != "S3 upload error" {
		t.Fatalf("expected raw upload error, got: %v", err)
	}
}

func TestS3GetObjectSuccess(t *testing.T) {
	c := &S3Client{
		bucket: "bucket",
		api: &fakeS3API{
			getFn: func(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
				if got := *input.Bucket; got != "bucket" {
					t.Fatalf("bucket mismatch: got %q", got)
				}
				if got := *input.Key; got != "key" {
					t.Fatalf("key mismatch: got %q", got)
				}
				return &s3.GetObjectOutput{
					Body: io.NopCloser(strings.NewReader("payload")),
				}, nil
			},
		},
	}

	got, err := c.GetObject(context.Background(), "key")
	if err != nil {
		t.Fatalf("get object failed: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("payload mismatch: got %q", string(got))
	}
}

func TestS3GetObjectErrors(t *testing.T) {
	c := &S3Client{bucket: "bucket"}
	if _, err := c.GetObject(context.Background(), "key"); err == nil || !strings.Contains(err.Error(), "s3 api client is not configured") {
		t.Fatalf("expected missing api client error, got: %v", err)
	}

	boom := errors.New("boom")
	c.api = &fakeS3API{
		getFn: func(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			return nil, boom
		},
	}
	if _, err := c.GetObject(context.Background(), "key"); !errors.Is(err, boom) {
		t.Fatalf("expected raw get error, got: %v", err)
	}

	c.api = &fakeS3API{
		getFn: func(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			return &s3.GetObjectOutput{Body: errReadCloser{}}, nil
		},
	}
	if _, err := c.GetObject(context.Background(), "key"); err == nil || !strings.Contains(err.Error(), "read object body: read failure") {
		t.Fatalf("expected body read error, got: %v", err)
	}
}

func TestS3DeleteObjectSuccessAndErrors(t *testing.T) {
	c := &S3Client{bucket: "bucket"}
	if err := c.DeleteObject(context.Background(), "key"); err == nil || !strings.Contains(err.Error(), "s3 api client is not configured") {
		t.Fatalf("expected missing api error, got: %v", err)
	}

	c.api = &fakeS3API{
		deleteFn: func(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
			if got := *input.Key; got != "path/item" {
				t.Fatalf("delete key mismatch: got %q", got)
			}
			return &s3.DeleteObjectOutput{}, nil
		},
	}
	if err := c.DeleteObject(context.Background(), "path/item"); err != nil {
		t.Fatalf("delete object failed: %v", err)
	}

	if err := c.DeleteObject(context.Background(), ""); err == nil || !strings.Contains(err.Error(), "invalid object key") {
		t.Fatalf("expected invalid key error, got: %v", err)
	}

	boom := errors.New("boom")
	c.api = &fakeS3API{
		deleteFn: func(_ context.Context, _ *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
			return nil, boom
		},
	}
	if err := c.DeleteObject(context.Background(), "key"); !errors.Is(err, boom) {
		t.Fatalf("expected raw delete error, got: %v", err)
	}
}

func TestS3ListKeysSuccess(t *testing.T) {
	paginator := &fakePaginator{
		steps: []paginatorStep{
			{
				page: &s3.ListObjectsV2Output{
					Contents: []types.Object{
						{Key: nil},
						{Key: aws.String("testfile1.txt")},
					},
				},
			},
			{
				page: &s3.ListObjectsV2Output{
					Contents: []types.Object{
						{Key: aws.String("nested/testfile2.txt")},
					},
				},
			},
		},
	}

	var capturedInput *s3.ListObjectsV2Input
	c := &S3Client{
		bucket: "bucket",
		api:    &fakeS3API{},
		newListObjectsV2Paginator: func(_ s3.ListObjectsV2APIClient, input *s3.ListObjectsV2Input) listObjectsV2Paginator {
			capturedInput = input
			return paginator
		},
	}

	keys, err := c.ListKeys(context.Background())
	if err != nil {
		t.Fatalf("list keys failed: %v", err)
	}
	want := []string{"testfile1.txt", "nested/testfile2.txt"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys mismatch: got %v want %v", keys, want)
	}
	if capturedInput == nil {
		t.Fatal("expected paginator input to be captured")
	}
	if got := *capturedInput.Bucket; got != "bucket" {
		t.Fatalf("bucket mismatch: got %q", got)
	}
	if capturedInput.Prefix != nil {
		t.Fatalf("expected whole-bucket listing, got prefix %q", *capturedInput.Prefix)
	}
}

func TestS3ListKeysEmptyBucket(t *testing.T) {
	c := &S3Client{
		bucket: "bucket",
		api:    &fakeS3API{},
		newListObjectsV2Paginator: func(_ s3.ListObjectsV2APIClient, _ *s3.ListObjectsV2Input) listObjectsV2Paginator {
			return &fakePaginator{steps: []paginatorStep{{page: &s3.ListObjectsV2Output{}}}}
		},
	}

	keys, err := c.ListKeys(context.Background())
	if err != nil {
		t.Fatalf("list keys failed: %v", err)
	}
	if keys == nil || len(keys) != 0 {
		t.Fatalf("expected empty non-nil keys, got %#v", keys)
	}
}

func TestS3ListKeysErrors(t *testing.T) {
	c := &S3Client{bucket: "bucket"}
	if _, err := c.ListKeys(context.Background()); err == nil || !strings.Contains(err.Error(), "s3 api client is not configured") {
		t.Fatalf("expected missing api client error, got: %v", err)
	}

	c.api = &fakeS3API{}
	if _, err := c.ListKeys(context.Background()); err == nil || !strings.Contains(err.Error(), "s3 paginator factory is not configured") {
		t.Fatalf("expected missing paginator factory error, got: %v", err)
	}

	c.newListObjectsV2Paginator = func(_ s3.ListObjectsV2APIClient, _ *s3.ListObjectsV2Input) listObjectsV2Paginator {
		return nil
	}
	if _, err := c.ListKeys(context.Background()); err == nil || !strings.Contains(err.Error(), "s3 paginator is not configured") {
		t.Fatalf("expected missing paginator error, got: %v", err)
	}

	boom := errors.New("boom")
	c.newListObjectsV2Paginator = func(_ s3.ListObjectsV2APIClient, _ *s3.ListObjectsV2Input) listObjectsV2Paginator {
		return &fakePaginator{steps: []paginatorStep{{err: boom}}}
	}
	if _, err := c.ListKeys(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected raw list error, got: %v", err)
	}
}

func TestS3OpenerBuildsClientOnce(t *testing.T) {
	calls := 0
	o := NewS3Opener(config.ObjectStorageConfig{S3Region: "us-west-2", S3Endpoint: "http://localhost:9000"})
	o.loadConfig = func(_ context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		calls++
		var opts awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&opts); err != nil {
				return aws.Config{}, err
			}
		}
		if opts.Region != "us-west-2" {
			t.Fatalf("region mismatch: got %q", opts.Region)
		}
		return aws.Config{Region: opts.Region}, nil
	}

	first, err := o.Open(context.Background(), "bucket-a")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	second, err := o.Open(context.Background(), "bucket-b")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected aws config to load once, got %d", calls)
	}

	a, b := first.(*S3Client), second.(*S3Client)
	if a.bucket != "bucket-a" || b.bucket != "bucket-b" {
		t.Fatalf("bucket binding mismatch: %q %q", a.bucket, b.bucket)
	}
	if a.api != b.api {
		t.Fatal("expected the SDK client to be shared")
	}
}

func TestS3OpenerLoadError(t *testing.T) {
	o := NewS3Opener(config.ObjectStorageConfig{})
	o.loadConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no credentials")
	}

	if _, err := o.Open(context.Background(), "bucket"); err == nil || !strings.Contains(err.Error(), "load aws config: no credentials") {
		t.Fatalf("expected wrapped load error, got: %v", err)
	}
}

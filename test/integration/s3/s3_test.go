//go:build integration

package s3_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/marmos91/dittovfd/pkg/config"
	"github.com/marmos91/dittovfd/pkg/store/object"
	s3store "github.com/marmos91/dittovfd/pkg/store/object/s3"
	objecttesting "github.com/marmos91/dittovfd/pkg/store/object/testing"
	"github.com/marmos91/dittovfd/pkg/vfd"
)

// Prerequisites:
//   - Localstack (or another S3-compatible service) on localhost:4566,
//     override with LOCALSTACK_ENDPOINT
//   - Run with: go test -tags=integration ./test/integration/s3/...
//
// To start Localstack:
//
//	docker run --rm -p 4566:4566 localstack/localstack

func endpoint() string {
	if ep := os.Getenv("LOCALSTACK_ENDPOINT"); ep != "" {
		return ep
	}
	return "http://localhost:4566"
}

func clientConfig() s3store.ClientConfig {
	return s3store.ClientConfig{
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Endpoint:        endpoint(),
		URIStyle:        s3store.URIStylePath,
	}
}

func newClient(t *testing.T) *s3.Client {
	t.Helper()
	client, err := s3store.NewClient(context.Background(), clientConfig())
	if err != nil {
		t.Fatalf("Failed to create S3 client: %v", err)
	}
	return client
}

var runID = time.Now().UnixNano()

// isolatedBackend maps the suite's logical bucket names onto real buckets
// unique to one subtest, creating them on first Put.
type isolatedBackend struct {
	*s3store.Store
	t      *testing.T
	client *s3.Client
	prefix string

	mu      sync.Mutex
	created map[string]bool
}

func (b *isolatedBackend) bucketName(bucket string) string {
	if bucket == "" {
		return ""
	}
	return b.prefix + bucket
}

func (b *isolatedBackend) Stat(ctx context.Context, bucket, key string) (uint64, object.Outcome) {
	return b.Store.Stat(ctx, b.bucketName(bucket), key)
}

func (b *isolatedBackend) Fetch(ctx context.Context, bucket, key string, offset uint64, buf []byte) object.Outcome {
	return b.Store.Fetch(ctx, b.bucketName(bucket), key, offset, buf)
}

func (b *isolatedBackend) Put(ctx context.Context, bucket, key string, data []byte) error {
	name := b.bucketName(bucket)
	if err := b.ensureBucket(ctx, name); err != nil {
		return err
	}
	return b.Store.Put(ctx, name, key, data)
}

func (b *isolatedBackend) ensureBucket(ctx context.Context, bucket string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.created[bucket] {
		return nil
	}
	if err := createBucket(ctx, b.client, bucket); err != nil {
		return err
	}
	b.created[bucket] = true
	b.t.Cleanup(func() { deleteBucket(b.client, bucket) })
	return nil
}

func createBucket(ctx context.Context, client *s3.Client, bucket string) error {
	_, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

// deleteBucket removes all objects and then the bucket.
func deleteBucket(client *s3.Client, bucket string) {
	ctx := context.Background()
	list, _ := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: aws.String(bucket)})
	if list != nil {
		for _, obj := range list.Contents {
			_, _ = client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(bucket), Key: obj.Key})
		}
	}
	_, _ = client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)})
}

// TestS3Backend_Integration runs the common backend suite against a real
// S3-compatible service.
func TestS3Backend_Integration(t *testing.T) {
	client := newClient(t)

	store, err := s3store.New(client)
	if err != nil {
		t.Fatal(err)
	}

	var counter atomic.Int64
	suite := &objecttesting.BackendTestSuite{
		NewBackend: func(t *testing.T) object.WritableBackend {
			n := counter.Add(1)
			return &isolatedBackend{
				Store:   store,
				t:       t,
				client:  client,
				prefix:  fmt.Sprintf("dittovfd-%d-%d-", runID%1_000_000, n),
				created: make(map[string]bool),
			}
		},
	}
	suite.Run(t)
}

// TestDriver_Integration opens and reads an object through a driver built
// from configuration, using the legacy S3_* environment variables.
func TestDriver_Integration(t *testing.T) {
	ctx := context.Background()
	client := newClient(t)

	bucket := fmt.Sprintf("dittovfd-driver-%d", runID%1_000_000)
	if err := createBucket(ctx, client, bucket); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { deleteBucket(client, bucket) })

	data := objecttesting.Pattern(4096)
	store, err := s3store.New(client)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, bucket, "data/object1", data); err != nil {
		t.Fatalf("Failed to seed object: %v", err)
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("S3_ACCESS_KEY_ID", "test")
	t.Setenv("S3_SECRET_ACCESS_KEY", "test")
	t.Setenv("S3_HOSTNAME", strings.TrimPrefix(strings.TrimPrefix(endpoint(), "http://"), "https://"))
	t.Setenv("S3_PROTOCOL", strings.SplitN(endpoint(), "://", 2)[0])
	t.Setenv("S3_URI_STYLE", "path")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	reg, err := config.InitializeRegistry(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to initialize drivers: %v", err)
	}
	defer reg.Close()

	drv, err := reg.Default()
	if err != nil {
		t.Fatal(err)
	}
	props, err := reg.AccessProps(drv.Name())
	if err != nil {
		t.Fatal(err)
	}

	f, err := drv.Open(ctx, bucket+"/data/object1", vfd.OpenReadOnly, props, vfd.MaxAddr)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	if f.EOF() != 4096 {
		t.Fatalf("Expected EOF 4096, got %d", f.EOF())
	}

	buf := make([]byte, 200)
	if err := f.Read(ctx, 100, buf); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(buf) != string(data[100:300]) {
		t.Error("Read returned wrong bytes")
	}

	missing, err := drv.Open(ctx, bucket+"/absent", vfd.OpenReadOnly, props, vfd.MaxAddr)
	if err != nil {
		t.Fatalf("Open of a missing object should succeed with size 0: %v", err)
	}
	defer missing.Close()
	if missing.EOF() != 0 {
		t.Errorf("Expected EOF 0 for a missing object, got %d", missing.EOF())
	}
}

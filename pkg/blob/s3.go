package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	config "github.com/mwantia/wind/internal/config/server"
)

// S3Store wraps MinIO/S3 interactions for photos and asset bundles.
type S3Store struct {
	client  *minio.Client
	bucket  string
	region  string
	baseURL string
	create  bool
}

// NewS3Store creates a MinIO client from the blob config.
func NewS3Store(cfg config.BlobS3Config, baseURL string) (*S3Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	if baseURL == "" {
		baseURL = fmt.Sprintf("%s/%s", client.EndpointURL().String(), cfg.Bucket)
	}

	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: baseURL,
		create:  cfg.AutoCreateBucket,
	}, nil
}

// EnsureBucket checks the bucket exists, creating it when auto-create is on.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if !s.create {
		return fmt.Errorf("bucket %s does not exist and auto_create_bucket is disabled", s.bucket)
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) error {
	name, err := CleanKey(key)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, s.bucket, name, r, size, putObjectOptions(opts))
	if err != nil {
		return fmt.Errorf("upload object %s: %w", name, err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	name, err := CleanKey(key)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", name, err)
	}
	defer obj.Close()

	buf, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotExist)
		}
		return nil, fmt.Errorf("read object %s: %w", name, err)
	}
	return buf, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	name, err := CleanKey(key)
	if err != nil {
		return err
	}

	opts := minio.RemoveObjectOptions{
		GovernanceBypass: true,
	}
	if err := s.client.RemoveObject(ctx, s.bucket, name, opts); err != nil && !isNotFound(err) {
		return fmt.Errorf("remove object %s: %w", name, err)
	}
	return nil
}

func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	name, err := CleanKey(key)
	if err != nil {
		return false, err
	}

	if _, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat object %s: %w", name, err)
	}
	return true, nil
}

func (s *S3Store) URL(key string) string {
	name, err := CleanKey(key)
	if err != nil {
		return ""
	}
	return joinURL(s.baseURL, name)
}

func putObjectOptions(opts PutOptions) minio.PutObjectOptions {
	out := minio.PutObjectOptions{
		ContentType:     opts.ContentType,
		ContentEncoding: opts.ContentEncoding,
		CacheControl:    opts.CacheControl,
		UserMetadata:    map[string]string{},
	}
	if out.ContentType == "" {
		out.ContentType = "application/octet-stream"
	}
	if opts.ACL != "" {
		out.UserMetadata["x-amz-acl"] = opts.ACL
	}
	for k, v := range opts.Headers {
		if http.CanonicalHeaderKey(k) == "Cache-Control" && out.CacheControl == "" {
			out.CacheControl = v
			continue
		}
		out.UserMetadata[k] = v
	}
	return out
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey"
}

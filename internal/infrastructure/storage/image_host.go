package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/campus-issues/issue-tracker/internal/infrastructure/config"
)

// publicReadPolicy lets anonymous clients fetch objects from the bucket, so
// the URLs stored on issues can be rendered directly.
const publicReadPolicy = `{
  "Version": "2012-10-17",
  "Statement": [{
    "Effect": "Allow",
    "Principal": {"AWS": ["*"]},
    "Action": ["s3:GetObject"],
    "Resource": ["arn:aws:s3:::%s/*"]
  }]
}`

// ImageHost relays image bytes to an S3-compatible bucket.
type ImageHost struct {
	client  *minio.Client
	bucket  string
	region  string
	baseURL string
}

func NewImageHost(cfg config.ImageHostConfig) (*ImageHost, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &ImageHost{
		client:  client,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: publicBaseURL(cfg.PublicURL, endpoint, cfg.Bucket, useSSL),
	}, nil
}

// publicBaseURL is the prefix objects are served from. Without an explicit
// public URL objects are addressed path-style on the endpoint.
func publicBaseURL(public, endpoint, bucket string, useSSL bool) string {
	if public != "" {
		return strings.TrimRight(public, "/")
	}
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket)
}

// EnsureBucket creates the bucket on first start and makes it publicly readable.
func (h *ImageHost) EnsureBucket(ctx context.Context) error {
	exists, err := h.client.BucketExists(ctx, h.bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", h.bucket, err)
	}
	if exists {
		return nil
	}
	if err := h.client.MakeBucket(ctx, h.bucket, minio.MakeBucketOptions{Region: h.region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", h.bucket, err)
	}
	if err := h.client.SetBucketPolicy(ctx, h.bucket, fmt.Sprintf(publicReadPolicy, h.bucket)); err != nil {
		return fmt.Errorf("set bucket policy %s: %w", h.bucket, err)
	}
	return nil
}

// Put uploads body under key and returns its public URL.
func (h *ImageHost) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	_, err := h.client.PutObject(ctx, h.bucket, key, body, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		return "", err
	}
	return h.URL(key), nil
}

func (h *ImageHost) Remove(ctx context.Context, key string) error {
	return h.client.RemoveObject(ctx, h.bucket, key, minio.RemoveObjectOptions{})
}

func (h *ImageHost) URL(key string) string {
	return h.baseURL + "/" + key
}

// Ping checks the bucket is reachable; used by the readiness probe.
func (h *ImageHost) Ping(ctx context.Context) error {
	_, err := h.client.BucketExists(ctx, h.bucket)
	return err
}

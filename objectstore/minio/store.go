// Package minio stores photos in a MinIO deployment.
package minio

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sagarc03/snapvault"
)

// Options configures the MinIO client. Endpoint is host:port without a
// scheme. Setting Region avoids a bucket location lookup on every presign.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
}

// Store implements snapvault.ObjectStore on MinIO.
type Store struct {
	client *minio.Client
	region string
	now    func() time.Time
}

// New creates a MinIO client. No request is made until the first operation.
func New(opts Options) (*Store, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("new minio store: %w", err)
	}

	return &Store{client: client, region: opts.Region, now: time.Now}, nil
}

// PresignPut returns a URL for a single PUT of key with contentType signed.
func (s *Store) PresignPut(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (snapvault.PresignedRequest, error) {
	now := s.now()

	headers := http.Header{}
	headers.Set("Content-Type", contentType)

	u, err := s.client.PresignHeader(ctx, http.MethodPut, bucket, key, ttl, url.Values{}, headers)
	if err != nil {
		return snapvault.PresignedRequest{}, fmt.Errorf("presign put: %w", err)
	}

	return snapvault.PresignedRequest{URL: u.String(), Method: http.MethodPut, ExpiresAt: now.Add(ttl).UTC()}, nil
}

// PresignGet returns a URL allowing GET of key.
func (s *Store) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (snapvault.PresignedRequest, error) {
	now := s.now()

	u, err := s.client.PresignedGetObject(ctx, bucket, key, ttl, url.Values{})
	if err != nil {
		return snapvault.PresignedRequest{}, fmt.Errorf("presign get: %w", err)
	}

	return snapvault.PresignedRequest{URL: u.String(), Method: http.MethodGet, ExpiresAt: now.Add(ttl).UTC()}, nil
}

// Delete removes key from bucket.
func (s *Store) Delete(ctx context.Context, bucket, key string) error {
	if err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

// EnsureBuckets creates each bucket that does not exist yet.
func (s *Store) EnsureBuckets(ctx context.Context, buckets ...string) error {
	for _, bucket := range buckets {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("ensure bucket %s: %w", bucket, err)
		}
		if exists {
			continue
		}
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("ensure bucket %s: create: %w", bucket, err)
		}
	}
	return nil
}

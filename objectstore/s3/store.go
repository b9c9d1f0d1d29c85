// Package s3 stores photos in Amazon S3 or an S3-compatible service.
package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/sagarc03/snapvault"
)

// Options configures the S3 client. Static credentials are used when both
// keys are set, otherwise the default AWS credential chain applies.
type Options struct {
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// Store implements snapvault.ObjectStore on S3.
type Store struct {
	client  *awss3.Client
	presign *awss3.PresignClient
	region  string
	now     func() time.Time
}

// New builds an S3 client. No request is made until the first operation.
func New(ctx context.Context, opts Options) (*Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("new s3 store: load aws config: %w", err)
	}

	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return &Store{
		client:  client,
		presign: awss3.NewPresignClient(client),
		region:  cfg.Region,
		now:     time.Now,
	}, nil
}

// PresignPut returns a URL for a single PUT of key. The Content-Type header
// is part of the signature.
func (s *Store) PresignPut(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (snapvault.PresignedRequest, error) {
	now := s.now()
	req, err := s.presign.PresignPutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, awss3.WithPresignExpires(ttl))
	if err != nil {
		return snapvault.PresignedRequest{}, fmt.Errorf("presign put: %w", err)
	}

	return snapvault.PresignedRequest{URL: req.URL, Method: req.Method, ExpiresAt: now.Add(ttl).UTC()}, nil
}

// PresignGet returns a URL allowing GET of key.
func (s *Store) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (snapvault.PresignedRequest, error) {
	now := s.now()
	req, err := s.presign.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(ttl))
	if err != nil {
		return snapvault.PresignedRequest{}, fmt.Errorf("presign get: %w", err)
	}

	return snapvault.PresignedRequest{URL: req.URL, Method: req.Method, ExpiresAt: now.Add(ttl).UTC()}, nil
}

// Delete removes key from bucket. S3 reports success for missing keys.
func (s *Store) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// EnsureBuckets creates each bucket that does not exist yet.
func (s *Store) EnsureBuckets(ctx context.Context, buckets ...string) error {
	for _, bucket := range buckets {
		_, err := s.client.HeadBucket(ctx, &awss3.HeadBucketInput{Bucket: aws.String(bucket)})
		if err == nil {
			continue
		}
		if !isNotFound(err) {
			return fmt.Errorf("ensure bucket %s: %w", bucket, err)
		}

		input := &awss3.CreateBucketInput{Bucket: aws.String(bucket)}
		if s.region != "" && s.region != "us-east-1" {
			input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
				LocationConstraint: types.BucketLocationConstraint(s.region),
			}
		}

		if _, err := s.client.CreateBucket(ctx, input); err != nil {
			return fmt.Errorf("ensure bucket %s: create: %w", bucket, err)
		}
	}
	return nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}

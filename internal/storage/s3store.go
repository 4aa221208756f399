package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cenkalti/backoff/v4"
)

// S3Store is the production Store backend: an S3-compatible bucket, with
// every call wrapped in exponential-backoff retry and large uploads routed
// through manager.Uploader's automatic multi-part split.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	newRetry func() backoff.BackOff
}

// NewS3Store loads AWS credentials/config the standard way (environment,
// shared config, or an EC2/ECS role) and returns a Store backed by bucket.
func NewS3Store(ctx context.Context, bucket string) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		newRetry: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}, nil
}

func (s *S3Store) retry(ctx context.Context, op func() error) error {
	return backoff.Retry(op, backoff.WithContext(s.newRetry(), ctx))
}

// Upload writes body to key. Bodies at or above MultipartThreshold go
// through the multipart uploader; smaller ones use a single PutObject.
func (s *S3Store) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	return s.retry(ctx, func() error {
		if len(body) >= MultipartThreshold {
			_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
				Bucket:      aws.String(s.bucket),
				Key:         aws.String(key),
				Body:        bytes.NewReader(body),
				ContentType: aws.String(contentType),
			})
			return err
		}

		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String(contentType),
		})
		return err
	})
}

// Download returns key's full contents.
func (s *S3Store) Download(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.retry(ctx, func() error {
		resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		out, err = io.ReadAll(resp.Body)
		return err
	})
	return out, err
}

// List returns every object under prefix, paginating as needed.
func (s *S3Store) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object
	err := s.retry(ctx, func() error {
		out = out[:0]
		paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
			Bucket: aws.String(s.bucket),
			Prefix: aws.String(prefix),
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return err
			}
			for _, obj := range page.Contents {
				lastModified := time.Time{}
				if obj.LastModified != nil {
					lastModified = *obj.LastModified
				}
				out = append(out, Object{Key: aws.ToString(obj.Key), LastModified: lastModified})
			}
		}
		return nil
	})
	return out, err
}

// ListFinished filters List(prefix) to objects modified within maxAge.
func (s *S3Store) ListFinished(ctx context.Context, prefix string, maxAge time.Duration) ([]Object, error) {
	all, err := s.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]Object, 0, len(all))
	for _, obj := range all {
		if now.Sub(obj.LastModified) <= maxAge {
			out = append(out, obj)
		}
	}
	return out, nil
}

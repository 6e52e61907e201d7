package reference

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options locates the reference workbook in an S3 compatible bucket
type S3Options struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// WorkbookStore downloads reference workbooks from object storage
type WorkbookStore interface {
	Fetch(ctx context.Context, bucket, key string) ([]byte, error)
}

// S3Store is the S3 backed WorkbookStore
type S3Store struct {
	downloader *manager.Downloader
}

// NewS3Store builds an S3 client from the default AWS configuration chain,
// overridden by static credentials and a custom endpoint when given
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{downloader: manager.NewDownloader(client)}, nil
}

// Fetch downloads an object into memory
func (s *S3Store) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer([]byte{})
	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
	}
	return buf.Bytes(), nil
}

// FetchWorkbook downloads and parses a reference workbook
func FetchWorkbook(ctx context.Context, store WorkbookStore, bucket, key string) (*Workbook, error) {
	data, err := store.Fetch(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	wb, err := ReadWorkbook(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook s3://%s/%s: %w", bucket, key, err)
	}
	return wb, nil
}

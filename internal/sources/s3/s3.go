// Package s3 reads the dataset from a CSV object in an S3-compatible bucket
// (AWS S3 or MinIO).
package s3

import (
	"context"
	"fmt"
	"log/slog"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"trafico/internal/core"
	"trafico/internal/sources"
)

var _ sources.RowReader = (*Reader)(nil)

// Config holds explicit construction parameters. Without static keys the
// default AWS credentials chain applies.
type Config struct {
	Region          string
	Bucket          string
	Key             string
	Endpoint        string // optional; enables a custom endpoint (e.g. MinIO)
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

type Reader struct {
	client *s3.Client
	bucket string
	key    string
}

// New creates an S3 reader from Config.
func New(ctx context.Context, cfg Config, optFns ...func(*s3.Options)) (*Reader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	if cfg.Key == "" {
		return nil, fmt.Errorf("s3 object key required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	fns := append([]func(*s3.Options){func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}}, optFns...)
	client := s3.NewFromConfig(awsCfg, fns...)
	return &Reader{client: client, bucket: cfg.Bucket, key: cfg.Key}, nil
}

// ReadRows downloads the object and parses it as CSV.
func (r *Reader) ReadRows(ctx context.Context) ([]core.RawRow, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &r.bucket, Key: &r.key})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", r.bucket, r.key, err)
	}
	defer out.Body.Close()

	rows, skipped, err := sources.ParseCSV(out.Body)
	if err != nil {
		return nil, fmt.Errorf("parse s3://%s/%s: %w", r.bucket, r.key, err)
	}
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped malformed CSV rows", "component", "sources", "bucket", r.bucket, "key", r.key, "skipped", skipped)
	}
	return rows, nil
}

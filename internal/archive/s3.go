package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/nao1215/contentscale/internal/model"
	"github.com/nao1215/contentscale/internal/report"
)

// defaultRegion is used with a custom endpoint when no region is given.
// MinIO and most S3-compatible services accept any region.
const defaultRegion = "us-east-1"

// Config contains S3 archive configuration.
type Config struct {
	Bucket string
	// Prefix is prepended to every key, e.g. "seo" gives seo/reports/...
	Prefix string
	Region string
	// Endpoint is a custom endpoint for MinIO or other S3-compatible services.
	Endpoint     string
	UsePathStyle bool
	// AccessKeyID and SecretAccessKey are static credentials. When both are
	// empty the default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
}

// PutObjectAPI is the subset of the S3 client used by S3Archiver.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver uploads scan reports as JSON objects.
type S3Archiver struct {
	client  PutObjectAPI
	bucket  string
	prefix  string
	version string
}

// NewS3Archiver creates an archiver from cfg, loading the AWS configuration
// from the environment for anything cfg leaves empty.
func NewS3Archiver(ctx context.Context, cfg Config, version string) (*S3Archiver, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, ErrNoBucket
	}
	if (cfg.AccessKeyID == "") != (cfg.SecretAccessKey == "") {
		return nil, ErrIncompleteCredentials
	}

	region := cfg.Region
	if region == "" {
		if cfg.Endpoint == "" {
			return nil, ErrNoRegion
		}
		region = defaultRegion
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return NewS3ArchiverWithClient(client, cfg.Bucket, cfg.Prefix, version), nil
}

// NewS3ArchiverWithClient creates an archiver around an existing client.
func NewS3ArchiverWithClient(client PutObjectAPI, bucket, prefix, version string) *S3Archiver {
	return &S3Archiver{
		client:  client,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		version: version,
	}
}

// Bucket returns the target bucket.
func (a *S3Archiver) Bucket() string {
	return a.bucket
}

// Key returns the object key of r: [prefix/]reports/YYYY/MM/<id>.json.
func (a *S3Archiver) Key(r *model.ScanReport) string {
	at := r.ScannedAt.UTC()
	key := path.Join("reports", fmt.Sprintf("%04d", at.Year()), fmt.Sprintf("%02d", int(at.Month())), r.ID+".json")
	if a.prefix != "" {
		key = path.Join(a.prefix, key)
	}
	return key
}

// Archive uploads r and returns its object key. Failed scans are archived
// as well so that the failure stage is kept with the history.
func (a *S3Archiver) Archive(ctx context.Context, r *model.ScanReport) (string, error) {
	if r == nil {
		return "", ErrNoReport
	}

	var body bytes.Buffer
	if _, err := report.NewJSONWriter(&body, a.version).Write(r); err != nil {
		return "", fmt.Errorf("failed to encode report %s: %w", r.ID, err)
	}

	key := a.Key(r)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body.Bytes()),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report to S3: %w", err)
	}
	return key, nil
}

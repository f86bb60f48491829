package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/fieldsync/internal/server/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// Presigner issues upload URLs for object keys.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, size int64) (string, error)
}

// S3Presigner presigns PUT requests against an S3-compatible store.
type S3Presigner struct {
	client *s3.PresignClient
	bucket string
	expiry time.Duration
}

// NewS3Presigner builds a presign client from the server's S3 settings.
// Path-style addressing is used so MinIO works without DNS buckets.
func NewS3Presigner(ctx context.Context, cfg *sc.Config) (*S3Presigner, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Presigner{
		client: s3.NewPresignClient(client),
		bucket: cfg.S3Bucket,
		expiry: cfg.PresignExpiry,
	}, nil
}

func (p *S3Presigner) PresignPut(ctx context.Context, key, contentType string, size int64) (string, error) {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	req, err := presignPutObject(p.client, ctx, in, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

// NewStorageKey returns a fresh object key: documents/YYYY/MM/DD/<uuid>.
func NewStorageKey(now time.Time) string {
	return fmt.Sprintf("documents/%04d/%02d/%02d/%s", now.Year(), now.Month(), now.Day(), uuid.New())
}

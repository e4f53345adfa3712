package media

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bindassticks/storefront/pkg/config"
)

// PutObjectAPI is the part of the S3 client used by R2Uploader.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2Uploader puts objects into a Cloudflare R2 bucket through the S3 API.
type R2Uploader struct {
	client    PutObjectAPI
	bucket    string
	publicURL string
	now       func() time.Time
}

// NewR2Client creates an S3 client pointed at the R2 account endpoint.
func NewR2Client(ctx context.Context, cfg config.R2Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load r2 config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.EndpointURL())
		o.UsePathStyle = true
	}), nil
}

func NewR2Uploader(client PutObjectAPI, bucket, publicBaseURL string) *R2Uploader {
	return &R2Uploader{
		client:    client,
		bucket:    bucket,
		publicURL: publicBaseURL,
		now:       time.Now,
	}
}

func (u *R2Uploader) Upload(ctx context.Context, obj Object) (string, error) {
	key := ObjectKey(u.now(), obj.Filename)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          obj.Body,
		ContentType:   aws.String(obj.ContentType),
		ContentLength: aws.Int64(obj.Size),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return publicURL(u.publicURL, key), nil
}
